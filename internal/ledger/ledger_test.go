package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechcore/internal/store"
)

func structured(entries map[string]map[string]any) store.Compound {
	table := store.Compound{}
	for id, e := range entries {
		table[id] = store.Compound(e)
	}
	return store.Compound{KeyUpgrades: table}
}

func TestReadAbsentStoreIsEmpty(t *testing.T) {
	assert.Empty(t, Read(nil, nil))
	assert.Empty(t, Read(store.Compound{}, nil))
}

func TestDecodeStructuredEnabledSpellings(t *testing.T) {
	c := structured(map[string]map[string]any{
		"strength":  {"level": 4, "enabled": true},
		"armor":     {"level": 2, "active": true},
		"speed":     {"level": 1, "state": "ON"},
		"night":     {"level": 3, "state": "OFF"},
		"negative":  {"level": -1, "enabled": true},
		"malformed": {"level": "three", "enabled": true},
	})
	c[KeyUpgrades].(store.Compound)["junk"] = 7 // not a table

	recs := DecodeStructured(c)
	require.Len(t, recs, 4)

	byID := map[string]Record{}
	for _, r := range recs {
		byID[r.ID] = r
	}
	assert.True(t, byID["STRENGTH"].Enabled)
	assert.True(t, byID["ARMOR"].Enabled)
	assert.True(t, byID["SPEED"].Enabled)
	assert.False(t, byID["NIGHT"].Enabled)
	assert.Equal(t, 4, byID["STRENGTH"].Level)
}

func TestDecodeFlatFlags(t *testing.T) {
	c := store.Compound{
		"upgrade_regen":        2,
		"IsPaused_regen":       true,
		"upgrade_ore_vision":   3,
		"Disabled_ORE_VISION":  true,
		"upgrade_flight":       1,
		"upgrade_broken":       "x",
		"upgrade_":             5,
		"unrelated":            9,
		"upgrade_energy_boost": 0,
	}
	recs := DecodeFlat(c)

	byID := map[string]Record{}
	for _, r := range recs {
		byID[r.ID] = r
	}
	require.Len(t, byID, 4)
	assert.True(t, byID["REGEN"].Paused)
	assert.False(t, byID["ORE_VISION"].Enabled, "case-variant Disabled_ key must apply")
	assert.True(t, byID["FLIGHT"].Active())
	assert.False(t, byID["ENERGY_BOOST"].Active(), "level 0 is never active")
}

func TestDecodeFlatFoldsCaseVariants(t *testing.T) {
	c := store.Compound{"upgrade_regen": 2, "upgrade_REGEN": 3, "IsPaused_REGEN": true}
	recs := DecodeFlat(c)
	require.Len(t, recs, 1)
	assert.Equal(t, 3, recs[0].Level)
	assert.True(t, recs[0].Paused)
}

func TestStructuredHonoursTopLevelPause(t *testing.T) {
	c := structured(map[string]map[string]any{"strength": {"level": 2, "enabled": true}})
	c["IsPaused_STRENGTH"] = true
	recs := Read(c, nil)
	require.Len(t, recs, 1)
	assert.False(t, recs[0].Active())
}

func TestReconcileEncodings(t *testing.T) {
	cases := []struct {
		name  string
		store store.Compound
		rec   Reconciler
		want  []Record
	}{
		{
			name:  "only structured",
			store: structured(map[string]map[string]any{"strength": {"level": 4, "enabled": true}}),
			want:  []Record{{ID: "STRENGTH", Level: 4, Enabled: true}},
		},
		{
			name:  "only flat",
			store: store.Compound{"upgrade_strength": 4},
			want:  []Record{{ID: "STRENGTH", Level: 4, Enabled: true}},
		},
		{
			name: "both present counts once",
			store: func() store.Compound {
				c := structured(map[string]map[string]any{"strength": {"level": 4, "enabled": true}})
				c["upgrade_strength"] = 2
				return c
			}(),
			want: []Record{{ID: "STRENGTH", Level: 4, Enabled: true}},
		},
		{
			name: "both present prefer flat",
			store: func() store.Compound {
				c := structured(map[string]map[string]any{"strength": {"level": 4, "enabled": true}})
				c["upgrade_strength"] = 2
				return c
			}(),
			rec:  PreferFlat,
			want: []Record{{ID: "STRENGTH", Level: 2, Enabled: true}},
		},
		{
			name: "both present highest level",
			store: func() store.Compound {
				c := structured(map[string]map[string]any{"strength": {"level": 1, "enabled": true}})
				c["upgrade_strength"] = 5
				return c
			}(),
			rec:  HighestLevel,
			want: []Record{{ID: "STRENGTH", Level: 5, Enabled: true}},
		},
		{
			name: "flat disable deactivates structured record",
			store: func() store.Compound {
				c := structured(map[string]map[string]any{"strength": {"level": 4, "enabled": true}})
				c["upgrade_strength"] = 4
				c["Disabled_strength"] = true
				return c
			}(),
			want: []Record{{ID: "STRENGTH", Level: 4, Enabled: true, Paused: true}},
		},
		{
			name: "structured disable deactivates flat record",
			store: func() store.Compound {
				c := structured(map[string]map[string]any{"strength": {"level": 3, "enabled": false}})
				c["upgrade_strength"] = 3
				return c
			}(),
			rec:  PreferFlat,
			want: []Record{{ID: "STRENGTH", Level: 3, Enabled: true, Paused: true}},
		},
		{
			name: "disjoint ids union",
			store: func() store.Compound {
				c := structured(map[string]map[string]any{"strength": {"level": 1, "enabled": true}})
				c["upgrade_armor"] = 2
				return c
			}(),
			want: []Record{
				{ID: "ARMOR", Level: 2, Enabled: true},
				{ID: "STRENGTH", Level: 1, Enabled: true},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Read(tc.store, tc.rec))
		})
	}
}

func TestDisableInEitherEncodingHoldsForEveryPolicy(t *testing.T) {
	structuredOff := structured(map[string]map[string]any{"strength": {"level": 3, "enabled": false}})
	structuredOff["upgrade_strength"] = 3

	flatOff := structured(map[string]map[string]any{"strength": {"level": 3, "enabled": true}})
	flatOff["upgrade_strength"] = 3
	flatOff["Disabled_strength"] = true

	for _, name := range []string{PolicyPreferStructured, PolicyPreferFlat, PolicyHighestLevel} {
		rec, err := ParseReconciler(name)
		require.NoError(t, err)
		for label, c := range map[string]store.Compound{"structured off": structuredOff, "flat off": flatOff} {
			recs := Read(c, rec)
			require.Len(t, recs, 1, "%s/%s", name, label)
			assert.False(t, recs[0].Active(), "%s/%s", name, label)
		}
	}
}

func TestParseReconciler(t *testing.T) {
	for _, name := range []string{"", PolicyPreferStructured, PolicyPreferFlat, PolicyHighestLevel} {
		r, err := ParseReconciler(name)
		require.NoError(t, err, name)
		assert.NotNil(t, r)
	}
	_, err := ParseReconciler("divide_by_two")
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	recs := []Record{{ID: "ENERGY_EFFICIENCY", Level: 3, Enabled: true}}
	r, ok := Find(recs, "energy-efficiency")
	require.True(t, ok)
	assert.Equal(t, 3, r.Level)
	_, ok = Find(recs, "missing")
	assert.False(t, ok)
}

func TestSetPaused(t *testing.T) {
	c := structured(map[string]map[string]any{
		"health-regen": {"level": 2, "enabled": true},
	})
	c["upgrade_strength"] = 3

	SetPaused(c, "health_regen", true)
	SetPaused(c, "STRENGTH", true)
	for _, r := range Read(c, nil) {
		assert.True(t, r.Paused, r.ID)
		assert.False(t, r.Active(), r.ID)
	}

	c["IsPaused_strength"] = true
	SetPaused(c, "strength", false)
	SetPaused(c, "Health Regen", false)
	for _, r := range Read(c, nil) {
		assert.False(t, r.Paused, r.ID)
	}
	assert.False(t, c.Has("IsPaused_strength"))
	assert.False(t, c.Has("IsPaused_STRENGTH"))

	SetPaused(nil, "strength", true)
	SetPaused(c, "", true)
	assert.Len(t, c, 2)
}
