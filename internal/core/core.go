// Package core exposes the mechanical core an accessory gates on.
//
// A core is found through its typed capability. Items persisted before the
// capability existed are recognised by registry name instead.
package core

import (
	"strings"

	"mechcore/internal/energy"
	"mechcore/internal/item"
	"mechcore/internal/ledger"
	"mechcore/internal/store"
	"mechcore/internal/upgrade"
)

// KeyEnergy holds the stored energy on the core's store.
const KeyEnergy = "Energy"

// Core is the capability accessories query.
type Core interface {
	// Ledger is the persisted store holding the upgrade ledger.
	Ledger() store.Compound
	// Energy is the resource buffer the tier is classified from.
	Energy() energy.Container
}

// Spec is the behavior attached to core items.
type Spec struct {
	BaseCapacity int `yaml:"base_capacity" env:"BASE_CAPACITY"`
	// CapacityPerLevel is added per level of the energy-capacity module.
	CapacityPerLevel int `yaml:"capacity_per_level" env:"CAPACITY_PER_LEVEL"`
}

// DefaultSpec is the stock core.
var DefaultSpec = Spec{BaseCapacity: 100000, CapacityPerLevel: 50000}

// Mechanical adapts a core item to Core. Energy lives in the item's store
// so it persists with the ledger.
type Mechanical struct {
	Item *item.Item
	Spec Spec
	// Reconciler merges the two ledger encodings when Capacity reads the
	// energy-capacity level. Nil prefers the structured table.
	Reconciler ledger.Reconciler
}

// Reconciled returns c reading its ledger through r, so capacity and the
// tier derived from it agree with the records the aggregator counts.
// Cores other than Mechanical are returned unchanged.
func Reconciled(c Core, r ledger.Reconciler) Core {
	m, ok := c.(*Mechanical)
	if !ok {
		return c
	}
	cp := *m
	cp.Reconciler = r
	return &cp
}

func (m *Mechanical) Ledger() store.Compound   { return m.Item.Tag() }
func (m *Mechanical) Energy() energy.Container { return m }

// Stored implements energy.Container.
func (m *Mechanical) Stored() int {
	n, _ := m.Item.Tag().Int(KeyEnergy)
	return min(max(n, 0), m.Capacity())
}

// Capacity grows with the energy-capacity module, whether or not it is
// paused.
func (m *Mechanical) Capacity() int {
	c := m.Spec.BaseCapacity
	if r, ok := ledger.Find(ledger.Read(m.Item.Tag(), m.Reconciler), upgrade.EnergyCapacity); ok {
		c += r.Level * m.Spec.CapacityPerLevel
	}
	return c
}

// Receive implements energy.Container.
func (m *Mechanical) Receive(amount int, simulate bool) int {
	if amount <= 0 {
		return 0
	}
	n := min(amount, m.Capacity()-m.Stored())
	if !simulate && n > 0 {
		m.Item.Tag().Set(KeyEnergy, m.Stored()+n)
	}
	return n
}

// Extract implements energy.Container.
func (m *Mechanical) Extract(amount int, simulate bool) int {
	if amount <= 0 {
		return 0
	}
	n := min(amount, m.Stored())
	if !simulate && n > 0 {
		m.Item.Tag().Set(KeyEnergy, m.Stored()-n)
	}
	return n
}

// SetStored overwrites the stored energy, clamped to capacity.
func (m *Mechanical) SetStored(n int) {
	m.Item.Tag().Set(KeyEnergy, min(max(n, 0), m.Capacity()))
}

// Of returns the Core an item provides, or nil.
func Of(it *item.Item) Core {
	if it == nil {
		return nil
	}
	switch b := it.Behavior.(type) {
	case Core:
		return b
	case Spec:
		return &Mechanical{Item: it, Spec: b}
	case *Spec:
		return &Mechanical{Item: it, Spec: *b}
	}
	if it.Behavior == nil && LegacyName(it.Registry) {
		return &Mechanical{Item: it, Spec: DefaultSpec}
	}
	return nil
}

// LegacyName reports whether a registry name identifies a core written
// before cores carried a typed behavior. Only the path after the
// namespace is inspected.
func LegacyName(registry string) bool {
	r := strings.ToLower(registry)
	if i := strings.IndexByte(r, ':'); i >= 0 {
		r = r[i+1:]
	}
	return strings.Contains(r, "mechanicalcore") ||
		(strings.Contains(r, "mechanical") && strings.Contains(r, "core"))
}

// Find returns the first core among slots. Only one core is supported.
func Find(slots []*item.Item) (Core, *item.Item) {
	for _, it := range slots {
		if c := Of(it); c != nil {
			return c, it
		}
	}
	return nil, nil
}
