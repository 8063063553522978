package session

import (
	"fmt"

	"mechcore/internal/accessory"
	"mechcore/internal/component"
	"mechcore/internal/core"
	"mechcore/internal/factory"
	"mechcore/internal/item"
	"mechcore/internal/ledger"
	"mechcore/internal/player"
	"mechcore/internal/system"
)

// ChargeStep is the share of capacity one charge or drain key moves.
const ChargeStep = 0.10

// Loot dropped when the training target is destroyed.
const (
	ScrapRegistry = "mechcore:scrap"
	IngotRegistry = "mechcore:ingot"
)

// processActionLocked executes one action. Caller must hold s.mu.
func (s *Server) processActionLocked(sess *Session, a Action) {
	switch a.Kind {
	case ActionEquip:
		s.equipLocked(sess, a.Index)
	case ActionUnequip:
		s.unequipLocked(sess, a.Index)
	case ActionCursorUp:
		s.moveCursorLocked(sess, -1)
	case ActionCursorDown:
		s.moveCursorLocked(sess, 1)
	case ActionTogglePause:
		s.togglePauseLocked(sess)
	case ActionCharge:
		s.chargeLocked(sess, ChargeStep)
	case ActionDrain:
		s.chargeLocked(sess, -ChargeStep)
	case ActionStrike:
		s.strikeLocked(sess)
	case ActionPickup:
		if s.pickupLocked(sess, true) == 0 {
			sess.Player.Notify("Nothing to pick up")
		}
	}
}

// equipLocked moves storage item i into the first free slot. Accessories
// must pass their controller's precondition first.
func (s *Server) equipLocked(sess *Session, i int) {
	p := sess.Player
	st := p.Storage()
	if i < 0 || i >= len(st) {
		return
	}
	it := st[i]
	c := s.controllerLocked(sess, it)
	if c == nil && core.Of(it) == nil {
		p.Notify(fmt.Sprintf("⚠ %s can't be worn", it.Name))
		return
	}
	if c != nil && s.kindInSlotLocked(sess, c.Def.Kind) {
		p.Notify(fmt.Sprintf("⚠ A %s is already worn", c.Def.Name))
		return
	}
	slot := p.FreeSlot()
	if slot < 0 {
		p.Notify("⚠ No free accessory slot")
		return
	}
	if c != nil && !c.CanEquip(p).Allowed {
		return
	}
	p.Take(it)
	p.PutSlot(slot, it)
	if c != nil {
		c.OnEquipped(p, s.now())
		return
	}
	p.Notify(fmt.Sprintf("✦ %s equipped", it.Name))
	s.logger.Info("core equipped", "player", sess.Name, "item", it.ID, "slot", slot)
}

// unequipLocked moves slot i to storage.
func (s *Server) unequipLocked(sess *Session, i int) {
	p := sess.Player
	it := p.Slot(i)
	if it == nil {
		return
	}
	if len(p.Storage()) >= p.StorageCapacity() {
		p.Notify("⚠ Storage is full")
		return
	}
	p.Unequip(it)
	p.Stash(it)
	if c := s.controllerLocked(sess, it); c != nil {
		c.OnUnequipped(p)
		return
	}
	p.Notify(fmt.Sprintf("✦ %s unequipped", it.Name))
	s.logger.Info("item unequipped", "player", sess.Name, "item", it.ID, "slot", i)
}

// modulesLocked reads the worn core's ledger. The second result is nil
// when no core is worn.
func (s *Server) modulesLocked(p *player.Player) ([]ledger.Record, core.Core) {
	cr, _ := core.Find(p.Slots())
	if cr == nil {
		return nil, nil
	}
	return ledger.Read(cr.Ledger(), s.env.Reconciler), core.Reconciled(cr, s.env.Reconciler)
}

func (s *Server) moveCursorLocked(sess *Session, d int) {
	recs, _ := s.modulesLocked(sess.Player)
	if len(recs) == 0 {
		sess.Cursor = 0
		return
	}
	sess.Cursor = min(max(sess.Cursor+d, 0), len(recs)-1)
}

// togglePauseLocked flips the pause flag of the module under the cursor.
// Worn accessories see the change at their next refresh.
func (s *Server) togglePauseLocked(sess *Session) {
	p := sess.Player
	recs, cr := s.modulesLocked(p)
	if cr == nil {
		p.Notify("⚠ No mechanical core equipped")
		return
	}
	if len(recs) == 0 {
		return
	}
	sess.Cursor = min(max(sess.Cursor, 0), len(recs)-1)
	r := recs[sess.Cursor]
	ledger.SetPaused(cr.Ledger(), r.ID, !r.Paused)
	if r.Paused {
		p.Notify(fmt.Sprintf("▶ %s resumed", r.ID))
	} else {
		p.Notify(fmt.Sprintf("⏸ %s paused", r.ID))
	}
	s.logger.Debug("module toggled", "player", sess.Name, "module", r.ID, "paused", !r.Paused)
}

// chargeLocked moves share of the worn core's capacity in (positive) or
// out (negative).
func (s *Server) chargeLocked(sess *Session, share float64) {
	_, cr := s.modulesLocked(sess.Player)
	if cr == nil {
		sess.Player.Notify("⚠ No mechanical core equipped")
		return
	}
	en := cr.Energy()
	amount := int(float64(en.Capacity()) * share)
	if amount >= 0 {
		en.Receive(amount, false)
		return
	}
	en.Extract(-amount, false)
}

func (s *Server) drainLocked(sess *Session) {
	if s.cfg.Sim.DrainPerTick <= 0 {
		return
	}
	if _, cr := s.modulesLocked(sess.Player); cr != nil {
		cr.Energy().Extract(s.cfg.Sim.DrainPerTick, false)
	}
}

// strikeLocked hits the training target with the player's attack damage.
// A worn rift glove strips its cached reduction from the target's
// invulnerability window.
func (s *Server) strikeLocked(sess *Session) {
	p := sess.Player
	if !s.world.Alive(s.target) {
		s.target = system.SpawnTarget(s.world, TargetName, s.cfg.Sim.TargetHealth)
	}
	hit := system.Hit{Damage: p.AttackDamage(), FromPlayer: true}
	if c := s.wornLocked(sess, accessory.RiftGlove); c != nil {
		hit.Reduction = int(c.Binding().Value)
	}
	res := system.Strike(s.world, s.target, hit)
	if s.metrics != nil {
		s.metrics.Strike(res.Landed)
	}
	switch {
	case !res.Landed:
		p.Notify(fmt.Sprintf("🛡 The %s shrugs it off (invulnerable %d/%d)", TargetName, res.Remaining, res.Max))
	case res.Killed:
		p.Notify(fmt.Sprintf("☠ You destroyed the %s", TargetName))
		s.lootLocked(sess)
		s.target = system.SpawnTarget(s.world, TargetName, s.cfg.Sim.TargetHealth)
	default:
		hp := s.world.Get(s.target, component.CHealth).(component.Health)
		p.Notify(fmt.Sprintf("⚔ You hit the %s for %.1f (%.0f left)", TargetName, res.Damage, hp.Current))
	}
}

// lootLocked drops the target's loot for sess. A worn magnet ring smelts it
// and doubles it once those features unlock.
func (s *Server) lootLocked(sess *Session) {
	n, registry, name := 1, ScrapRegistry, "Scrap Metal"
	if c := s.wornLocked(sess, accessory.MagnetRing); c != nil {
		if c.Unlocked(accessory.UnlockDoubleDrop) {
			n = 2
		}
		if c.Unlocked(accessory.UnlockSmelting) {
			registry, name = IngotRegistry, "Metal Ingot"
		}
	}
	for i := 0; i < n; i++ {
		factory.NewDroppedItem(s.world, item.New(registry, name, nil), sess.Name)
	}
}

// pickupLocked moves the player's dropped items back into storage until it
// is full and returns how many it moved.
func (s *Server) pickupLocked(sess *Session, warnFull bool) int {
	p := sess.Player
	n := 0
	for _, id := range s.world.Query(component.CDropped) {
		d := s.world.Get(id, component.CDropped).(component.Dropped)
		if d.Owner != sess.Name {
			continue
		}
		if !p.Stash(d.Item) {
			if warnFull {
				p.Notify("⚠ Storage is full")
			}
			break
		}
		s.world.Destroy(id)
		p.Notify(fmt.Sprintf("✦ Picked up %s", d.Item.Name))
		n++
	}
	return n
}

// applyGearLocked applies the accessories that act on the player directly:
// a void backpack link extends storage and, once unlocked, collects the
// player's dropped items every tick.
func (s *Server) applyGearLocked(sess *Session) {
	p := sess.Player
	c := s.wornLocked(sess, accessory.VoidBackpack)
	extra := 0
	if c != nil {
		extra = int(c.Binding().Value)
	}
	p.SetStorageCapacity(player.DefaultStorage + extra)
	if c != nil && c.Unlocked(accessory.UnlockAutoCollect) {
		s.pickupLocked(sess, false)
	}
}
