package accessory

import (
	"time"

	"mechcore/internal/aggregate"
	"mechcore/internal/bonus"
	"mechcore/internal/schedule"
	"mechcore/internal/store"
)

// Binding is the cache an accessory keeps on its own store. It is for
// display and the hit path only; the ledger stays authoritative.
type Binding struct {
	Active    int
	Qualified int
	Value     float64
	Sync      float64
	// LastUpdate is the simulated tick of the last refresh.
	LastUpdate int64
}

// syncer is implemented by formulas with a separately cached share.
type syncer interface {
	SyncShare(s aggregate.Snapshot) float64
}

// ReadBinding loads the cache for d from c. A missing store reads as zero.
func ReadBinding(d *Definition, c store.Compound) Binding {
	var b Binding
	b.Active, _ = c.Int(KeyCachedActive)
	b.Qualified, _ = c.Int(KeyCachedQualified)
	if d.CacheKey != "" {
		b.Value, _ = c.Float(d.CacheKey)
	}
	b.Sync, _ = c.Float(KeySyncBonus)
	b.LastUpdate, _ = c.Int64(KeyLastUpdateTime)
	return b
}

// NewBinding derives the cache for d from a snapshot taken at now.
func NewBinding(d *Definition, s aggregate.Snapshot, now time.Duration) Binding {
	b := Binding{
		Active:     s.Active,
		Qualified:  s.Qualified,
		LastUpdate: int64(now / schedule.TickDuration),
	}
	if s.HasCore {
		b.Value = d.Formula.Value(s)
		if sy, ok := d.Formula.(syncer); ok {
			b.Sync = sy.SyncShare(s)
		}
	}
	return b
}

// Write stores b on c under d's keys.
func (b Binding) Write(d *Definition, c store.Compound) {
	c.Set(KeyCachedActive, b.Active)
	if d.Policy.MinLevel > 0 {
		c.Set(KeyCachedQualified, b.Qualified)
	}
	if d.CacheKey != "" {
		c.Set(d.CacheKey, b.Value)
	}
	if _, ok := d.Formula.(syncer); ok {
		c.Set(KeySyncBonus, b.Sync)
	}
	c.Set(KeyLastUpdateTime, b.LastUpdate)
}

var _ syncer = bonus.DamageFormula{}
