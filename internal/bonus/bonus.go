// Package bonus holds the pure formulas mapping module counts to bonus
// magnitudes. Every formula is clamped to its ceiling.
package bonus

import (
	"math"

	"mechcore/internal/aggregate"
)

// Luck is min(max, qualified).
func Luck(qualified, max int) int {
	return clampInt(qualified, 0, max)
}

// Health is min(max, active*perModule).
func Health(active int, perModule, max float64) float64 {
	return clamp(float64(active)*perModule, 0, max)
}

// Damage is levelSum*perLevel + efficiency*syncPerLevel, clamped to max.
// Fractions, so 0.10 is +10%.
func Damage(levelSum int, perLevel float64, efficiency int, syncPerLevel, max float64) float64 {
	return clamp(float64(levelSum)*perLevel+Sync(efficiency, syncPerLevel), 0, max)
}

// Sync is the energy-efficiency share of Damage.
func Sync(efficiency int, syncPerLevel float64) float64 {
	if efficiency <= 0 {
		return 0
	}
	return float64(efficiency) * syncPerLevel
}

// Invulnerability is min(max, floor(active/modulesPerTier)*perTier), in
// ticks.
func Invulnerability(active, modulesPerTier, perTier, max int) int {
	if modulesPerTier <= 0 {
		return 0
	}
	return clampInt(active/modulesPerTier*perTier, 0, max)
}

// Stepped is base + floor(active/every)*step, clamped to max. The magnet
// ring's pickup range and the backpack link's capacity use it.
func Stepped(active, base, step, every, max int) int {
	if every <= 0 {
		return clampInt(base, 0, max)
	}
	if active < 0 {
		active = 0
	}
	return clampInt(base+active/every*step, 0, max)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Formula derives an accessory's bonus from a cached snapshot. Value must
// never exceed Ceiling.
type Formula interface {
	Value(s aggregate.Snapshot) float64
	Ceiling() float64
}

// LuckFormula scales on qualified modules.
type LuckFormula struct {
	Max int `yaml:"max_luck"`
}

func (f LuckFormula) Value(s aggregate.Snapshot) float64 { return float64(Luck(s.Qualified, f.Max)) }
func (f LuckFormula) Ceiling() float64                    { return float64(f.Max) }

// HealthFormula scales on the active count.
type HealthFormula struct {
	PerModule float64 `yaml:"health_per_module"`
	Max       float64 `yaml:"max_bonus_health"`
}

func (f HealthFormula) Value(s aggregate.Snapshot) float64 {
	return Health(s.Active, f.PerModule, f.Max)
}
func (f HealthFormula) Ceiling() float64 { return f.Max }

// DamageFormula scales on the active level sum plus energy efficiency.
type DamageFormula struct {
	PerLevel     float64 `yaml:"damage_per_level"`
	SyncPerLevel float64 `yaml:"sync_per_level"`
	Max          float64 `yaml:"max_damage"`
}

func (f DamageFormula) Value(s aggregate.Snapshot) float64 {
	return Damage(s.Active, f.PerLevel, s.EnergyEfficiency, f.SyncPerLevel, f.Max)
}
func (f DamageFormula) Ceiling() float64 { return f.Max }

// SyncShare is the energy-efficiency part of the damage bonus.
func (f DamageFormula) SyncShare(s aggregate.Snapshot) float64 {
	return Sync(s.EnergyEfficiency, f.SyncPerLevel)
}

// InvulnerabilityFormula yields ticks removed from a struck target's
// invulnerability window.
type InvulnerabilityFormula struct {
	ModulesPerTier int `yaml:"modules_per_tier"`
	PerTier        int `yaml:"reduction_per_tier"`
	Max            int `yaml:"max_reduction"`
}

func (f InvulnerabilityFormula) Value(s aggregate.Snapshot) float64 {
	return float64(Invulnerability(s.Active, f.ModulesPerTier, f.PerTier, f.Max))
}
func (f InvulnerabilityFormula) Ceiling() float64 { return float64(f.Max) }

// SteppedFormula grows by Step every Every active modules from Base.
type SteppedFormula struct {
	Base  int `yaml:"base"`
	Step  int `yaml:"step"`
	Every int `yaml:"every"`
	Max   int `yaml:"max"`
}

func (f SteppedFormula) Value(s aggregate.Snapshot) float64 {
	return float64(Stepped(s.Active, f.Base, f.Step, f.Every, f.Max))
}
func (f SteppedFormula) Ceiling() float64 { return float64(f.Max) }

// None is the formula of gate-only accessories.
type None struct{}

func (None) Value(aggregate.Snapshot) float64 { return 0 }
func (None) Ceiling() float64                 { return 0 }
