package factory

import (
	"mechcore/internal/accessory"
	"mechcore/internal/component"
	"mechcore/internal/core"
	"mechcore/internal/ecs"
	"mechcore/internal/item"
	"mechcore/internal/ledger"
	"mechcore/internal/store"
)

// CoreRegistry is the registry name of the mechanical core.
const CoreRegistry = "mechcore:mechanical_core"

// NewCore creates a fully charged core whose structured ledger holds one
// enabled record per entry in levels.
func NewCore(spec core.Spec, levels map[string]int) *item.Item {
	it := item.New(CoreRegistry, "Mechanical Core", spec)
	table := store.Compound{}
	for id, lvl := range levels {
		table[id] = store.Compound{ledger.KeyLevel: lvl, ledger.KeyEnabled: true}
	}
	it.Store.Set(ledger.KeyUpgrades, table)
	m := core.Of(it).(*core.Mechanical)
	m.SetStored(m.Capacity())
	return it
}

// NewLegacyCore creates an untyped core using only the flat encoding, as
// items written by older builds look.
func NewLegacyCore(levels map[string]int) *item.Item {
	it := item.New("moremod:mechanical_core", "Mechanical Core (legacy)", nil)
	for id, lvl := range levels {
		it.Store.Set(ledger.PrefixUpgrade+id, lvl)
	}
	m := core.Of(it).(*core.Mechanical)
	m.SetStored(m.Capacity())
	return it
}

// NewAccessory creates an accessory item for d.
func NewAccessory(d *accessory.Definition) *item.Item {
	return item.New(d.Registry, d.Name, d)
}

// Rehydrate restores the typed behavior of an item loaded from storage,
// keyed by registry name. Unknown registries are left untyped, so legacy
// cores are still found by name.
func Rehydrate(it *item.Item, spec core.Spec, cat map[accessory.Kind]*accessory.Definition) {
	if it.Registry == CoreRegistry {
		it.Behavior = spec
		return
	}
	for _, d := range cat {
		if d.Registry == it.Registry {
			it.Behavior = d
			return
		}
	}
}

// DefinitionOf returns the accessory definition an item carries.
func DefinitionOf(it *item.Item) (*accessory.Definition, bool) {
	if it == nil {
		return nil, false
	}
	d, ok := it.Behavior.(*accessory.Definition)
	return d, ok
}

// StarterLevels is the sandbox's starting ledger.
var StarterLevels = map[string]int{
	"strength":          3,
	"armor_enhancement": 3,
	"health_regen":      2,
	"energy_efficiency": 2,
	"solar_generator":   2,
}

// StarterKit returns a core followed by one of every accessory.
func StarterKit(spec core.Spec, cat map[accessory.Kind]*accessory.Definition) []*item.Item {
	kit := []*item.Item{NewCore(spec, StarterLevels)}
	for _, k := range accessory.Kinds {
		if d, ok := cat[k]; ok {
			kit = append(kit, NewAccessory(d))
		}
	}
	return kit
}

// NewDroppedItem places it in the world.
func NewDroppedItem(w *ecs.World, it *item.Item, owner string) ecs.EntityID {
	return w.Spawn(component.Dropped{Item: it, Owner: owner})
}
