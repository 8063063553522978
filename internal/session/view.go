package session

import (
	"slices"

	"mechcore/internal/aggregate"
	"mechcore/internal/component"
	"mechcore/internal/console"
	"mechcore/internal/core"
	"mechcore/internal/tier"
)

// View snapshots what sess's board shows.
func (s *Server) View(sess *Session) console.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(sess)
}

func (s *Server) viewLocked(sess *Session) console.View {
	p := sess.Player
	v := console.View{
		Player:     sess.Name,
		Health:     p.Health,
		MaxHealth:  p.MaxHealth(),
		Attack:     p.AttackDamage(),
		Luck:       p.Luck(),
		StorageCap: p.StorageCapacity(),
		Cursor:     sess.Cursor,
		Notices:    slices.Clone(p.Notices()),
	}

	if recs, cr := s.modulesLocked(p); cr != nil {
		en := cr.Energy()
		t := s.env.Classifier.Classify(en)
		v.HasCore = true
		v.Energy, v.Capacity = en.Stored(), en.Capacity()
		v.Tier = t.String()
		v.Active = aggregate.ActiveCount(recs, t, true)
		for _, r := range recs {
			v.Modules = append(v.Modules, console.Module{
				ID:        r.ID,
				Level:     r.Level,
				Active:    r.Active(),
				Permitted: tier.Permitted(r.ID, t),
				Paused:    r.Paused,
			})
		}
	}

	for i := 0; i < p.SlotCount(); i++ {
		it := p.Slot(i)
		if it == nil {
			v.Slots = append(v.Slots, console.Slot{})
			continue
		}
		slot := console.Slot{Name: it.Name}
		if c := s.controllerLocked(sess, it); c != nil {
			slot.State = c.State().String()
			if c.Def.Label != "" {
				slot.Detail = c.Def.FormatValue(c.Binding().Value)
			}
		} else if core.Of(it) != nil {
			slot.State = "core"
		}
		v.Slots = append(v.Slots, slot)
	}
	for _, it := range p.Storage() {
		v.Storage = append(v.Storage, it.Name)
	}
	for _, id := range s.world.Query(component.CDropped) {
		if s.world.Get(id, component.CDropped).(component.Dropped).Owner == sess.Name {
			v.Dropped++
		}
	}
	if s.world.Alive(s.target) {
		hp := s.world.Get(s.target, component.CHealth).(component.Health)
		inv, _ := s.world.Get(s.target, component.CInvulnerability).(component.Invulnerability)
		v.Target = &console.Target{
			Name:         TargetName,
			Health:       hp.Current,
			Max:          hp.Max,
			Invulnerable: inv.Remaining,
			Window:       inv.Max,
		}
	}
	return v
}
