package tier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechcore/internal/energy"
)

func TestPermitted(t *testing.T) {
	cases := []struct {
		id   string
		want [4]bool // Normal, PowerSaving, Emergency, Critical
	}{
		{"strength", [4]bool{true, true, false, false}},
		{"ore_vision", [4]bool{true, false, false, false}},
		{"flight_module", [4]bool{true, false, false, false}},
		{"solar_generator", [4]bool{true, false, false, false}},
		{"thermal_generator", [4]bool{true, true, false, false}},
		{"yellow_shield", [4]bool{true, true, true, false}},
		{"damage-boost", [4]bool{true, true, true, false}},
		{"armor_enhancement", [4]bool{true, true, true, false}},
		{"health_regen", [4]bool{true, true, true, true}},
		{"regen", [4]bool{true, true, true, true}},
		{"fire_extinguish", [4]bool{true, true, true, true}},
		{"thorns", [4]bool{true, true, true, true}},
		{"waterproof_module", [4]bool{true, true, true, true}},
		{"some_future_module", [4]bool{true, true, false, false}},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			for i, tr := range All {
				assert.Equal(t, tc.want[i], Permitted(tc.id, tr), tr.String())
			}
		})
	}
}

func TestPermittedNarrowsMonotonically(t *testing.T) {
	ids := []string{
		"strength", "ore_vision", "stealth", "flight", "kinetic_generator", "solar_generator",
		"shield_generator", "yellow_shield", "damage_boost", "armor_enhancement",
		"health_regen", "regeneration", "fire_extinguish", "thorns", "waterproof_module",
		"energy_efficiency", "void_energy", "combat_charger", "x",
	}
	for _, id := range ids {
		for i := 1; i < len(All); i++ {
			if Permitted(id, All[i]) {
				assert.True(t, Permitted(id, All[i-1]), "%s permitted at %s but not %s", id, All[i], All[i-1])
			}
		}
	}
}

func TestPermittedRejectsEmptyID(t *testing.T) {
	assert.False(t, Permitted("", Normal))
	assert.False(t, Permitted("  ", Normal))
}

func TestClassify(t *testing.T) {
	cl := Classifier{}
	cases := []struct {
		name           string
		capacity, have int
		want           Tier
	}{
		{"full", 1000, 1000, Normal},
		{"at normal threshold", 100, 30, Normal},
		{"power saving", 100, 29, PowerSaving},
		{"at power saving threshold", 100, 15, PowerSaving},
		{"emergency", 100, 14, Emergency},
		{"at emergency threshold", 100, 5, Emergency},
		{"critical", 100, 4, Critical},
		{"empty", 100, 0, Critical},
		{"zero capacity", 0, 0, Critical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cl.Classify(energy.NewBuffer(tc.capacity, tc.have)))
		})
	}
	assert.Equal(t, Critical, cl.Classify(nil))
}

func TestClassifyCustomThresholds(t *testing.T) {
	cl := Classifier{Thresholds: Thresholds{Normal: 0.5, PowerSaving: 0.4, Emergency: 0.1}}
	assert.Equal(t, PowerSaving, cl.ClassifyFraction(0.45))
	assert.Equal(t, Emergency, cl.ClassifyFraction(0.3))
}

func TestParseAndText(t *testing.T) {
	for _, tr := range All {
		got, err := Parse(tr.String())
		require.NoError(t, err)
		assert.Equal(t, tr, got)
	}
	got, err := Parse("power-saving")
	require.NoError(t, err)
	assert.Equal(t, PowerSaving, got)

	var tr Tier
	require.NoError(t, tr.UnmarshalText([]byte("critical")))
	assert.Equal(t, Critical, tr)
	assert.Error(t, tr.UnmarshalText([]byte("dire")))
	assert.Equal(t, "Tier(9)", Tier(9).String())
}
