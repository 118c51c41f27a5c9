package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestNew_NilData verifies nil maps yield a usable empty config.
func TestNew_NilData(t *testing.T) {
	c := New(nil)
	assert.NotNil(t, c.Raw())
	assert.False(t, c.Has("anything"))
}

// TestConfig_String tests string extraction with defaults.
func TestConfig_String(t *testing.T) {
	c := New(map[string]any{"name": "graph", "count": 3})

	assert.Equal(t, "graph", c.String("name", "default"))
	assert.Equal(t, "default", c.String("missing", "default"))
	assert.Equal(t, "default", c.String("count", "default")) // wrong type
}

// TestConfig_Duration tests the accepted duration forms.
func TestConfig_Duration(t *testing.T) {
	c := New(map[string]any{
		"str":     "30s",
		"int":     5,
		"int64":   int64(10),
		"float":   1.5,
		"dur":     2 * time.Minute,
		"invalid": "not-a-duration",
	})

	assert.Equal(t, 30*time.Second, c.Duration("str", 0))
	assert.Equal(t, 5*time.Second, c.Duration("int", 0))
	assert.Equal(t, 10*time.Second, c.Duration("int64", 0))
	assert.Equal(t, 1500*time.Millisecond, c.Duration("float", 0))
	assert.Equal(t, 2*time.Minute, c.Duration("dur", 0))
	assert.Equal(t, time.Second, c.Duration("invalid", time.Second))
	assert.Equal(t, time.Second, c.Duration("missing", time.Second))
}

// TestConfig_Bool tests boolean extraction.
func TestConfig_Bool(t *testing.T) {
	c := New(map[string]any{"on": true, "off": false, "str": "true"})

	assert.True(t, c.Bool("on", false))
	assert.False(t, c.Bool("off", true))
	assert.True(t, c.Bool("str", true)) // wrong type, default
	assert.False(t, c.Bool("missing", false))
}

// TestConfig_Int tests integer extraction including JSON float64s.
func TestConfig_Int(t *testing.T) {
	c := New(map[string]any{
		"int":      42,
		"int64":    int64(7),
		"wholeF":   3.0,
		"fracF":    3.5,
		"str":      "42",
	})

	assert.Equal(t, 42, c.Int("int", 0))
	assert.Equal(t, 7, c.Int("int64", 0))
	assert.Equal(t, 3, c.Int("wholeF", 0))
	assert.Equal(t, -1, c.Int("fracF", -1)) // fractional part rejected
	assert.Equal(t, -1, c.Int("str", -1))
	assert.Equal(t, -1, c.Int("missing", -1))
}

// TestConfig_Float tests float extraction.
func TestConfig_Float(t *testing.T) {
	c := New(map[string]any{"f": 1.5, "i": 2, "i64": int64(3)})

	assert.Equal(t, 1.5, c.Float("f", 0))
	assert.Equal(t, 2.0, c.Float("i", 0))
	assert.Equal(t, 3.0, c.Float("i64", 0))
	assert.Equal(t, 9.9, c.Float("missing", 9.9))
}

// TestConfig_StringSlice tests slice extraction and conversion.
func TestConfig_StringSlice(t *testing.T) {
	c := New(map[string]any{
		"strings": []string{"a", "b"},
		"anys":    []any{"x", "y"},
		"mixed":   []any{"x", 1},
	})

	assert.Equal(t, []string{"a", "b"}, c.StringSlice("strings", nil))
	assert.Equal(t, []string{"x", "y"}, c.StringSlice("anys", nil))
	assert.Equal(t, []string{"d"}, c.StringSlice("mixed", []string{"d"})) // non-string element
	assert.Nil(t, c.StringSlice("missing", nil))
}

// TestConfig_Sub tests nested section access.
func TestConfig_Sub(t *testing.T) {
	c := New(map[string]any{
		"run": map[string]any{"max_visits": 10},
		"str": "not a map",
	})

	sub := c.Sub("run")
	assert.Equal(t, 10, sub.Int("max_visits", 0))

	assert.False(t, c.Sub("missing").Has("anything"))
	assert.False(t, c.Sub("str").Has("anything"))
}

// TestConfig_AnyAndHas tests raw access.
func TestConfig_AnyAndHas(t *testing.T) {
	c := New(map[string]any{"x": 1})

	assert.Equal(t, 1, c.Any("x", nil))
	assert.Equal(t, "fallback", c.Any("missing", "fallback"))
	assert.True(t, c.Has("x"))
	assert.False(t, c.Has("missing"))
}
