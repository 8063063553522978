// Package upgrade names upgrade modules. Every id that crosses a package
// boundary is canonical: upper case, words joined by single underscores.
package upgrade

import "strings"

// Well-known module ids referenced by gating and bonus rules.
const (
	HealthRegen       = "HEALTH_REGEN"
	Regeneration      = "REGENERATION"
	FireExtinguish    = "FIRE_EXTINGUISH"
	Thorns            = "THORNS"
	Waterproof        = "WATERPROOF_MODULE"
	YellowShield      = "YELLOW_SHIELD"
	ShieldGenerator   = "SHIELD_GENERATOR"
	DamageBoost       = "DAMAGE_BOOST"
	ArmorEnhancement  = "ARMOR_ENHANCEMENT"
	OreVision         = "ORE_VISION"
	Stealth           = "STEALTH"
	FlightModule      = "FLIGHT_MODULE"
	KineticGenerator  = "KINETIC_GENERATOR"
	SolarGenerator    = "SOLAR_GENERATOR"
	ThermalGenerator  = "THERMAL_GENERATOR"
	VoidEnergy        = "VOID_ENERGY"
	CombatCharger     = "COMBAT_CHARGER"
	EnergyEfficiency  = "ENERGY_EFFICIENCY"
	EnergyCapacity    = "ENERGY_CAPACITY"
	Strength          = "STRENGTH"
)

// Canon normalises a raw id: trimmed, '-' and ' ' become '_', runs of '_'
// collapse, upper case. "health-regen", "Health Regen" and "HEALTH_REGEN"
// all name the same module.
func Canon(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return '_'
		}
		return r
	}, s)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.ToUpper(s)
}

// Matcher classifies ids by exact identity or by substring, case-insensitively.
type Matcher struct {
	exact      map[string]bool
	substrings []string
}

// NewMatcher builds a Matcher. Inputs are canonicalised.
func NewMatcher(exact []string, substrings []string) Matcher {
	m := Matcher{exact: make(map[string]bool, len(exact))}
	for _, id := range exact {
		m.exact[Canon(id)] = true
	}
	for _, s := range substrings {
		m.substrings = append(m.substrings, Canon(s))
	}
	return m
}

// Match reports whether id belongs to the class.
func (m Matcher) Match(id string) bool {
	c := Canon(id)
	if c == "" {
		return false
	}
	if m.exact[c] {
		return true
	}
	for _, s := range m.substrings {
		if strings.Contains(c, s) {
			return true
		}
	}
	return false
}

var generators = NewMatcher(
	[]string{SolarGenerator, KineticGenerator, ThermalGenerator, VoidEnergy, CombatCharger},
	[]string{"GENERATOR", "CHARGER", "SOLAR", "KINETIC", "THERMAL", "VOID_ENERGY"},
)

// IsGenerator reports whether id is a generator/charger-class module.
func IsGenerator(id string) bool { return generators.Match(id) }
