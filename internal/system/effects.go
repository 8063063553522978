package system

import (
	"mechcore/internal/component"
	"mechcore/internal/ecs"
)

// TickInvulnerability counts every target's invulnerability window down by
// one tick.
func TickInvulnerability(w *ecs.World) {
	for _, id := range w.Query(component.CInvulnerability) {
		inv := w.Get(id, component.CInvulnerability).(component.Invulnerability)
		if inv.Remaining > 0 {
			inv.Remaining--
			w.Add(id, inv)
		}
	}
}

// SpawnTarget adds a training target with full health and an idle window.
func SpawnTarget(w *ecs.World, name string, hp float64) ecs.EntityID {
	return w.Spawn(
		component.Target{Name: name},
		component.Health{Current: hp, Max: hp},
		component.Invulnerability{Max: component.DefaultInvulnerability},
	)
}

// Targets lists live training targets in id order.
func Targets(w *ecs.World) []ecs.EntityID {
	return w.Query(component.CTarget, component.CHealth)
}
