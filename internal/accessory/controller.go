// Package accessory binds accessories to a wearer's mechanical core. A
// controller gates equipping on the core's active module count, keeps the
// derived bonus applied while the accessory is worn, and ejects the
// accessory once the count no longer holds.
package accessory

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"mechcore/internal/aggregate"
	"mechcore/internal/attribute"
	"mechcore/internal/core"
	"mechcore/internal/item"
	"mechcore/internal/ledger"
	"mechcore/internal/schedule"
	"mechcore/internal/tier"
)

// Wearer is the player side of a binding.
type Wearer interface {
	// Slots are the accessory slots searched for a core.
	Slots() []*item.Item
	Attributes() *attribute.Set
	// AttributeChanged is called after a modifier on n is applied or
	// removed.
	AttributeChanged(n attribute.Name)
	Notify(msg string)
	// Unequip takes it out of its accessory slot.
	Unequip(it *item.Item) bool
	// Stash puts it in general storage and reports false when full.
	Stash(it *item.Item) bool
	// Drop puts it into the world.
	Drop(it *item.Item)
}

// Reason explains a gate decision.
type Reason uint8

const (
	ReasonOK Reason = iota
	ReasonNoCore
	ReasonInsufficient
)

func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "ok"
	case ReasonNoCore:
		return "no_core"
	case ReasonInsufficient:
		return "insufficient_modules"
	}
	return fmt.Sprintf("Reason(%d)", uint8(r))
}

// Decision is the outcome of the equip precondition.
type Decision struct {
	Allowed  bool
	Reason   Reason
	Observed int
	Required int
	Snapshot aggregate.Snapshot
}

// State is a controller's lifecycle state.
type State uint8

const (
	Unbound State = iota
	EquippedValid
	Ejecting
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case EquippedValid:
		return "equipped"
	case Ejecting:
		return "ejecting"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Observer receives controller events. Metrics implement it.
type Observer interface {
	Denied(k Kind, r Reason)
	Ejected(k Kind, r Reason)
	Refreshed(k Kind, s aggregate.Snapshot)
}

// Env is what every controller shares.
type Env struct {
	Reconciler ledger.Reconciler
	Classifier tier.Classifier
	Scheduler  *schedule.Scheduler
	// Period is the refresh cadence while worn.
	Period   time.Duration
	Observer Observer
	Logger   *slog.Logger
}

// DefaultPeriod is one second of simulated time.
const DefaultPeriod = time.Second

// Controller drives one accessory instance on one wearer.
type Controller struct {
	Def  *Definition
	Item *item.Item
	env  *Env

	state State
	task  *schedule.Task
}

// NewController returns an Unbound controller for it.
func NewController(d *Definition, it *item.Item, env *Env) *Controller {
	return &Controller{Def: d, Item: it, env: env}
}

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// Binding returns the cache as last persisted.
func (c *Controller) Binding() Binding { return ReadBinding(c.Def, c.Item.Tag()) }

// Unlocked reports whether the named feature is on at the cached count.
func (c *Controller) Unlocked(name string) bool {
	if c.state != EquippedValid {
		return false
	}
	active := c.Binding().Active
	for _, u := range c.Def.Unlocks {
		if u.Name == name {
			return active >= u.AtActive
		}
	}
	return false
}

func (c *Controller) logger() *slog.Logger {
	if c.env.Logger != nil {
		return c.env.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Evaluate snapshots the wearer's core for this accessory. No core reads
// as zero active modules.
func Evaluate(d *Definition, w Wearer, env *Env) aggregate.Snapshot {
	cr, _ := core.Find(w.Slots())
	if cr == nil {
		return aggregate.Snapshot{Tier: tier.Critical}
	}
	cr = core.Reconciled(cr, env.Reconciler)
	t := env.Classifier.Classify(cr.Energy())
	return aggregate.Evaluate(ledger.Read(cr.Ledger(), env.Reconciler), t, d.Policy)
}

// Check evaluates the equip precondition without side effects.
func Check(d *Definition, w Wearer, env *Env) Decision {
	s := Evaluate(d, w, env)
	dec := Decision{Observed: s.Active, Required: d.Required, Snapshot: s}
	switch {
	case !s.HasCore:
		dec.Reason = ReasonNoCore
	case s.Active < d.Required:
		dec.Reason = ReasonInsufficient
	default:
		dec.Allowed = true
	}
	return dec
}

// CanEquip evaluates the precondition once and notifies the wearer when it
// is denied.
func (c *Controller) CanEquip(w Wearer) Decision {
	dec := Check(c.Def, w, c.env)
	if !dec.Allowed {
		w.Notify(DenyNotice(c.Def, dec))
		if c.env.Observer != nil {
			c.env.Observer.Denied(c.Def.Kind, dec.Reason)
		}
	}
	return dec
}

// OnEquipped caches the count, applies the bonus, notifies the wearer and
// starts the periodic refresh.
func (c *Controller) OnEquipped(w Wearer, now time.Duration) {
	s := Evaluate(c.Def, w, c.env)
	b := NewBinding(c.Def, s, now)
	b.Write(c.Def, c.Item.Tag())
	c.apply(w, b.Value)
	c.state = EquippedValid
	w.Notify(ActivationNotice(c.Def, b))
	c.logger().Info("accessory equipped",
		"kind", c.Def.Kind, "item", c.Item.ID, "active", s.Active, "tier", s.Tier, "value", b.Value)

	if c.env.Scheduler != nil {
		c.task.Cancel()
		period := c.env.Period
		if period <= 0 {
			period = DefaultPeriod
		}
		c.task = c.env.Scheduler.Every(period, func(now time.Duration) { c.Refresh(w, now) })
	}
}

// Refresh recomputes the count and bonus, refreshes the cache and ejects
// the accessory if the precondition no longer holds. It reports whether
// the accessory is still equipped.
func (c *Controller) Refresh(w Wearer, now time.Duration) bool {
	if c.state != EquippedValid {
		return false
	}
	dec := Check(c.Def, w, c.env)
	b := NewBinding(c.Def, dec.Snapshot, now)
	b.Write(c.Def, c.Item.Tag())
	if c.env.Observer != nil {
		c.env.Observer.Refreshed(c.Def.Kind, dec.Snapshot)
	}
	c.logger().Debug("accessory refresh",
		"kind", c.Def.Kind, "item", c.Item.ID, "active", dec.Observed, "tier", dec.Snapshot.Tier, "allowed", dec.Allowed)
	if !dec.Allowed {
		c.Eject(w, dec)
		return false
	}
	c.apply(w, b.Value)
	return true
}

// Eject removes the accessory from its slot and its bonus from the wearer,
// returns the item to storage or drops it, and explains why.
func (c *Controller) Eject(w Wearer, dec Decision) {
	c.state = Ejecting
	c.stop()
	w.Unequip(c.Item)
	c.remove(w)
	dropped := false
	if !w.Stash(c.Item) {
		w.Drop(c.Item)
		dropped = true
	}
	w.Notify(EjectNotice(c.Def, dec))
	if c.env.Observer != nil {
		c.env.Observer.Ejected(c.Def.Kind, dec.Reason)
	}
	c.logger().Info("accessory ejected",
		"kind", c.Def.Kind, "item", c.Item.ID, "reason", dec.Reason,
		"active", dec.Observed, "required", dec.Required, "dropped", dropped)
	c.state = Unbound
}

// OnUnequipped removes the bonus after the wearer takes the accessory off.
func (c *Controller) OnUnequipped(w Wearer) {
	if c.state == Unbound {
		return
	}
	c.stop()
	c.remove(w)
	c.state = Unbound
	w.Notify(RemovedNotice(c.Def))
	c.logger().Info("accessory unequipped", "kind", c.Def.Kind, "item", c.Item.ID)
}

// Detach stops the refresh and takes the bonus off without a notice, for a
// wearer leaving with the accessory still worn. The cache is kept.
func (c *Controller) Detach(w Wearer) {
	if c.state == Unbound {
		return
	}
	c.stop()
	c.remove(w)
	c.state = Unbound
}

func (c *Controller) stop() {
	c.task.Cancel()
	c.task = nil
}

func (c *Controller) apply(w Wearer, v float64) {
	if !c.Def.Modifies() {
		return
	}
	w.Attributes().Apply(c.Def.Effect.Attribute, attribute.Modifier{
		ID:     c.Def.Effect.ModifierID,
		Name:   string(c.Def.Kind),
		Amount: v,
		Op:     c.Def.Effect.Op,
	})
	w.AttributeChanged(c.Def.Effect.Attribute)
}

func (c *Controller) remove(w Wearer) {
	if !c.Def.Modifies() {
		return
	}
	if w.Attributes().Remove(c.Def.Effect.Attribute, c.Def.Effect.ModifierID) {
		w.AttributeChanged(c.Def.Effect.Attribute)
	}
}
