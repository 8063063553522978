// Package aggregate turns a core's ledger into the counts accessories gate
// and scale on.
package aggregate

import (
	"mechcore/internal/ledger"
	"mechcore/internal/tier"
	"mechcore/internal/upgrade"
)

// Policy is a consumer's view of the ledger.
type Policy struct {
	// CountGenerators includes generator/charger modules in the active count.
	CountGenerators bool
	// MinLevel is the level at or above which a counted module is
	// qualified. Zero disables the qualified statistic.
	MinLevel int
}

// Snapshot is one evaluation of a core for one consumer.
type Snapshot struct {
	HasCore   bool
	Tier      tier.Tier
	Active    int // level sum of counted modules
	Qualified int // number of counted modules at or above Policy.MinLevel
	// EnergyEfficiency is the level of the energy-efficiency module when it
	// counts at the current tier, else 0.
	EnergyEfficiency int
}

// counts reports whether r survives the activity, tier and generator
// filters.
func counts(r ledger.Record, t tier.Tier, countGenerators bool) bool {
	if !r.Active() || !tier.Permitted(r.ID, t) {
		return false
	}
	return countGenerators || !upgrade.IsGenerator(r.ID)
}

// ActiveCount sums the levels of every record that is active, permitted at
// t and, unless countGenerators is set, not a generator. The caller owns
// de-duplication: recs should come from ledger.Read.
func ActiveCount(recs []ledger.Record, t tier.Tier, countGenerators bool) int {
	n := 0
	for _, r := range recs {
		if counts(r, t, countGenerators) {
			n += r.Level
		}
	}
	return n
}

// QualifiedCount counts the records ActiveCount would sum whose level is at
// least minLevel. Each record contributes 1.
func QualifiedCount(recs []ledger.Record, t tier.Tier, countGenerators bool, minLevel int) int {
	n := 0
	for _, r := range recs {
		if counts(r, t, countGenerators) && r.Level >= minLevel {
			n++
		}
	}
	return n
}

// Evaluate computes a Snapshot of recs at tier t.
func Evaluate(recs []ledger.Record, t tier.Tier, p Policy) Snapshot {
	s := Snapshot{
		HasCore: true,
		Tier:    t,
		Active:  ActiveCount(recs, t, p.CountGenerators),
	}
	if p.MinLevel > 0 {
		s.Qualified = QualifiedCount(recs, t, p.CountGenerators, p.MinLevel)
	}
	if r, ok := ledger.Find(recs, upgrade.EnergyEfficiency); ok && r.Active() && tier.Permitted(r.ID, t) {
		s.EnergyEfficiency = r.Level
	}
	return s
}
