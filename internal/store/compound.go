// Package store holds the persisted key-value tree attached to every item
// instance. Reads are tolerant: a missing key, a nil Compound or a value of
// the wrong shape reads as "absent" instead of failing.
package store

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// Compound is a persisted key-value tree. Values are scalars (integers,
// floats, booleans, strings) or nested Compounds. Decoded JSON and YAML maps
// are accepted wherever a nested Compound is expected.
type Compound map[string]any

// New returns an empty Compound.
func New() Compound { return Compound{} }

// Has reports whether key is present.
func (c Compound) Has(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c[key]
	return ok
}

// Int returns the integer stored at key. Floats are accepted only when they
// hold an integral value, so decoded JSON numbers round-trip.
func (c Compound) Int(key string) (int, bool) {
	if c == nil {
		return 0, false
	}
	return toInt(c[key])
}

// Int64 is Int for tick counters and other long values.
func (c Compound) Int64(key string) (int64, bool) {
	n, ok := c.Int(key)
	return int64(n), ok
}

// Float returns the number stored at key.
func (c Compound) Float(key string) (float64, bool) {
	if c == nil {
		return 0, false
	}
	switch v := c[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	n, ok := toInt(c[key])
	return float64(n), ok
}

// Bool returns the flag stored at key. Numeric 1/0 are accepted because the
// legacy encodings stored flags as bytes. Anything else reads as false.
func (c Compound) Bool(key string) bool {
	if c == nil {
		return false
	}
	switch v := c[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	}
	n, ok := toInt(c[key])
	return ok && n != 0
}

// String returns the string stored at key, or "".
func (c Compound) String(key string) string {
	if c == nil {
		return ""
	}
	s, _ := c[key].(string)
	return s
}

// Compound returns the nested tree stored at key.
func (c Compound) Compound(key string) (Compound, bool) {
	if c == nil {
		return nil, false
	}
	switch v := c[key].(type) {
	case Compound:
		return v, true
	case map[string]any:
		return Compound(v), true
	}
	return nil, false
}

// Set stores v at key. Setting on a nil Compound is a no-op.
func (c Compound) Set(key string, v any) {
	if c == nil {
		return
	}
	c[key] = v
}

// Delete removes key.
func (c Compound) Delete(key string) { delete(c, key) }

// Keys returns the keys in sorted order so decoding is deterministic.
func (c Compound) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy. Nested maps are copied as Compounds.
func (c Compound) Clone() Compound {
	if c == nil {
		return nil
	}
	out := make(Compound, len(c))
	for k, v := range c {
		switch t := v.(type) {
		case Compound:
			out[k] = t.Clone()
		case map[string]any:
			out[k] = Compound(t).Clone()
		default:
			out[k] = v
		}
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, false
		}
		return int(n), true
	case float32:
		return toInt(float64(n))
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}
