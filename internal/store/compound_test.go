package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCompoundReadsAsAbsent(t *testing.T) {
	var c Compound
	_, ok := c.Int("level")
	assert.False(t, ok)
	assert.False(t, c.Bool("enabled"))
	assert.Equal(t, "", c.String("state"))
	_, ok = c.Compound("Upgrades")
	assert.False(t, ok)
	assert.False(t, c.Has("x"))
	c.Set("x", 1) // must not panic
}

func TestIntAcceptsIntegralNumbersOnly(t *testing.T) {
	cases := []struct {
		name string
		v    any
		want int
		ok   bool
	}{
		{"int", 4, 4, true},
		{"int64", int64(7), 7, true},
		{"byte", uint8(1), 1, true},
		{"integral float", 3.0, 3, true},
		{"fractional float", 2.5, 0, false},
		{"string", "3", 0, false},
		{"bool", true, 0, false},
		{"json number", json.Number("12"), 12, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Compound{"k": tc.v}.Int("k")
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBoolToleratesLegacyByteFlags(t *testing.T) {
	c := Compound{"a": true, "b": uint8(1), "c": 0, "d": "true", "e": "nope"}
	assert.True(t, c.Bool("a"))
	assert.True(t, c.Bool("b"))
	assert.False(t, c.Bool("c"))
	assert.True(t, c.Bool("d"))
	assert.False(t, c.Bool("e"))
	assert.False(t, c.Bool("missing"))
}

func TestCompoundAcceptsDecodedMaps(t *testing.T) {
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"Upgrades":{"strength":{"level":4}}}`), &decoded))

	c := Compound(decoded)
	ups, ok := c.Compound("Upgrades")
	require.True(t, ok)
	entry, ok := ups.Compound("strength")
	require.True(t, ok)
	lvl, ok := entry.Int("level")
	require.True(t, ok)
	assert.Equal(t, 4, lvl)
}

func TestCloneIsDeep(t *testing.T) {
	orig := Compound{"Upgrades": map[string]any{"a": map[string]any{"level": 1}}}
	cp := orig.Clone()

	ups, _ := cp.Compound("Upgrades")
	a, _ := ups.Compound("a")
	a.Set("level", 9)

	origUps, _ := orig.Compound("Upgrades")
	origA, _ := origUps.Compound("a")
	lvl, _ := origA.Int("level")
	assert.Equal(t, 1, lvl)
}

func TestKeysSorted(t *testing.T) {
	c := Compound{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, c.Keys())
}
