package stategraph

// loopGuard tracks per-node visit counts within a single run and
// enforces the configured ceiling. Counts are monotonically
// non-decreasing during a run and reset for every new run; they are
// persisted in checkpoints so a resumed run keeps counting where it
// left off.
//
// loopGuard is not safe for concurrent use; the engine touches it
// only between steps, never from branch goroutines.
type loopGuard struct {
	max    int
	visits map[string]int
}

func newLoopGuard(max int) *loopGuard {
	return &loopGuard{max: max, visits: make(map[string]int)}
}

// recordVisit increments the count for a node and returns it.
func (lg *loopGuard) recordVisit(node string) int {
	lg.visits[node]++
	return lg.visits[node]
}

// count returns the current count for a node.
func (lg *loopGuard) count(node string) int {
	return lg.visits[node]
}

// wouldExceed reports whether dispatching the node one more time
// would push its count past the ceiling.
func (lg *loopGuard) wouldExceed(node string) bool {
	return lg.visits[node]+1 > lg.max
}

// snapshot returns a copy of the visit counts for checkpointing.
func (lg *loopGuard) snapshot() map[string]int {
	out := make(map[string]int, len(lg.visits))
	for k, v := range lg.visits {
		out[k] = v
	}
	return out
}

// restore replaces the counts from a checkpoint.
func (lg *loopGuard) restore(visits map[string]int) {
	lg.visits = make(map[string]int, len(visits))
	for k, v := range visits {
		lg.visits[k] = v
	}
}
