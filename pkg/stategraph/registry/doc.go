// Package registry provides a generic thread-safe registry for values indexed by key.
//
// Registry is designed for read-heavy workloads using sync.RWMutex. It supports
// any comparable key type and any value type through Go generics.
//
// Its primary role here is binding node names from declarative graph
// documents to Go callables:
//
//	nodes := registry.New[string, stategraph.NodeFunc]()
//	nodes.Register("classify", classifyNode)
//	nodes.Register("respond", respondNode)
//
//	g, err := stategraph.FromSpec(spec, nodes)
//
// # Thread Safety
//
// All Registry methods are safe for concurrent use. The Range method iterates
// over a snapshot of the registry, allowing mutations during iteration without
// affecting the iteration itself.
package registry
