package system

import (
	"mechcore/internal/component"
	"mechcore/internal/ecs"
)

// Hit is one incoming attack.
type Hit struct {
	Damage float64
	// FromPlayer marks a player-sourced hit. Only those apply Reduction.
	FromPlayer bool
	// Reduction is the number of invulnerability ticks the attacker's gear
	// strips from the target, read from the accessory cache.
	Reduction int
}

// StrikeResult holds the outcome of one hit.
type StrikeResult struct {
	Landed    bool
	Damage    float64
	Killed    bool
	Remaining int // invulnerability ticks left after the hit
	Max       int // rolling maximum after the hit
}

// Strike resolves hit against target.
// A hit landing while the target's invulnerability is above half its
// maximum is ignored. A landed hit resets the window to its maximum and
// then, for player-sourced hits, shortens both the window and its rolling
// maximum by hit.Reduction (the maximum never drops below 1).
// If target HP drops to ≤ 0 it is destroyed and Killed=true.
func Strike(w *ecs.World, target ecs.EntityID, hit Hit) StrikeResult {
	hpComp := w.Get(target, component.CHealth)
	if hpComp == nil {
		return StrikeResult{}
	}
	hp := hpComp.(component.Health)
	inv := component.Invulnerability{Max: component.DefaultInvulnerability}
	if c := w.Get(target, component.CInvulnerability); c != nil {
		inv = c.(component.Invulnerability)
	}

	if inv.Remaining > inv.Max/2 {
		return StrikeResult{Remaining: inv.Remaining, Max: inv.Max}
	}

	dmg := max(hit.Damage, 0)
	hp.Current -= dmg
	inv.Remaining = inv.Max
	if hit.FromPlayer && hit.Reduction > 0 {
		inv = Shorten(inv, hit.Reduction)
	}

	result := StrikeResult{Landed: true, Damage: dmg, Remaining: inv.Remaining, Max: inv.Max}
	if hp.Current <= 0 {
		result.Killed = true
		w.Destroy(target)
		return result
	}
	w.Add(target, hp)
	w.Add(target, inv)
	return result
}

// Shorten removes r ticks from the window and its rolling maximum.
func Shorten(inv component.Invulnerability, r int) component.Invulnerability {
	inv.Remaining = max(0, inv.Remaining-r)
	inv.Max = max(1, inv.Max-r)
	return inv
}
