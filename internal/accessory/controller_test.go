package accessory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechcore/internal/aggregate"
	"mechcore/internal/attribute"
	"mechcore/internal/core"
	"mechcore/internal/item"
	"mechcore/internal/ledger"
	"mechcore/internal/schedule"
	"mechcore/internal/store"
)

type fakeWearer struct {
	slots   []*item.Item
	attrs   *attribute.Set
	notices []string
	storage []*item.Item
	full    bool
	dropped []*item.Item
	changed []attribute.Name
}

func newWearer(slots ...*item.Item) *fakeWearer {
	return &fakeWearer{slots: slots, attrs: attribute.NewSet(map[attribute.Name]float64{attribute.MaxHealth: 20})}
}

func (w *fakeWearer) Slots() []*item.Item               { return w.slots }
func (w *fakeWearer) Attributes() *attribute.Set        { return w.attrs }
func (w *fakeWearer) AttributeChanged(n attribute.Name) { w.changed = append(w.changed, n) }
func (w *fakeWearer) Notify(msg string)                 { w.notices = append(w.notices, msg) }
func (w *fakeWearer) Drop(it *item.Item)                { w.dropped = append(w.dropped, it) }

func (w *fakeWearer) Unequip(it *item.Item) bool {
	for i, s := range w.slots {
		if s == it {
			w.slots = append(w.slots[:i], w.slots[i+1:]...)
			return true
		}
	}
	return false
}

func (w *fakeWearer) Stash(it *item.Item) bool {
	if w.full {
		return false
	}
	w.storage = append(w.storage, it)
	return true
}

func (w *fakeWearer) lastNotice() string {
	if len(w.notices) == 0 {
		return ""
	}
	return w.notices[len(w.notices)-1]
}

// newCore returns a charged core whose ledger holds one structured record
// per id with the given level.
func newCore(levels map[string]int) *item.Item {
	it := item.New("mechcore:mechanical_core", "Core", core.Spec{BaseCapacity: 1000})
	table := store.Compound{}
	for id, lvl := range levels {
		table[id] = store.Compound{"level": lvl, "enabled": true}
	}
	it.Store[ledger.KeyUpgrades] = table
	it.Store[core.KeyEnergy] = 1000
	return it
}

func setLevel(coreItem *item.Item, id string, level int) {
	table, _ := coreItem.Store.Compound(ledger.KeyUpgrades)
	table[id] = store.Compound{"level": level, "enabled": true}
}

type recorder struct {
	denied, ejected []Reason
	refreshes       int
}

func (r *recorder) Denied(_ Kind, reason Reason)       { r.denied = append(r.denied, reason) }
func (r *recorder) Ejected(_ Kind, reason Reason)      { r.ejected = append(r.ejected, reason) }
func (r *recorder) Refreshed(Kind, aggregate.Snapshot) { r.refreshes++ }

func newEnv() (*Env, *recorder) {
	rec := &recorder{}
	return &Env{Scheduler: schedule.New(), Period: time.Second, Observer: rec}, rec
}

func TestCanEquipDeniesOneShort(t *testing.T) {
	cat := Catalog(DefaultBalance())
	for _, k := range Kinds {
		d := cat[k]
		t.Run(string(k), func(t *testing.T) {
			env, rec := newEnv()
			w := newWearer(newCore(map[string]int{"health_regen": d.Required - 1}))
			c := NewController(d, item.New(d.Registry, d.Name, d), env)

			dec := c.CanEquip(w)
			assert.False(t, dec.Allowed)
			assert.Equal(t, ReasonInsufficient, dec.Reason)
			assert.Contains(t, w.lastNotice(), fmt.Sprintf("(%d/%d)", d.Required-1, d.Required))
			assert.Equal(t, []Reason{ReasonInsufficient}, rec.denied)
		})
	}
}

func TestCanEquipNoCore(t *testing.T) {
	env, _ := newEnv()
	d := Catalog(DefaultBalance())[Wishbone]
	w := newWearer(item.New("mechcore:magnet_ring", "Ring", nil))
	dec := NewController(d, item.New(d.Registry, d.Name, d), env).CanEquip(w)
	assert.Equal(t, ReasonNoCore, dec.Reason)
	assert.Contains(t, w.lastNotice(), "mechanical core")
}

func TestCanEquipAllowedIsSilent(t *testing.T) {
	env, _ := newEnv()
	d := Catalog(DefaultBalance())[Circulation]
	w := newWearer(newCore(map[string]int{"strength": 3}))
	dec := NewController(d, item.New(d.Registry, d.Name, d), env).CanEquip(w)
	assert.True(t, dec.Allowed)
	assert.Empty(t, w.notices)
}

func TestOnEquippedAppliesBonusAndCaches(t *testing.T) {
	env, _ := newEnv()
	d := Catalog(DefaultBalance())[Circulation]
	acc := item.New(d.Registry, d.Name, d)
	w := newWearer(newCore(map[string]int{"strength": 4, "armor_enhancement": 2}))
	c := NewController(d, acc, env)

	c.OnEquipped(w, schedule.Ticks(40))
	assert.Equal(t, EquippedValid, c.State())
	assert.Equal(t, 32.0, w.attrs.Value(attribute.MaxHealth))
	assert.Contains(t, w.lastNotice(), "max health +12")

	b := c.Binding()
	assert.Equal(t, 6, b.Active)
	assert.Equal(t, 12.0, b.Value)
	assert.Equal(t, int64(40), b.LastUpdate)
	assert.Equal(t, 1, env.Scheduler.Len())
}

func TestRefreshIsIdempotent(t *testing.T) {
	env, _ := newEnv()
	d := Catalog(DefaultBalance())[Wishbone]
	coreItem := newCore(map[string]int{"strength": 3, "armor_enhancement": 3, "thorns": 1})
	w := newWearer(coreItem)
	c := NewController(d, item.New(d.Registry, d.Name, d), env)

	c.OnEquipped(w, 0)
	env.Scheduler.Advance(2 * time.Second)

	mods := w.attrs.Get(attribute.Luck).Modifiers()
	require.Len(t, mods, 1)
	assert.Equal(t, LuckModifierID, mods[0].ID)
	assert.Equal(t, 2.0, mods[0].Amount)

	setLevel(coreItem, "thorns", 4)
	env.Scheduler.Advance(time.Second)
	mods = w.attrs.Get(attribute.Luck).Modifiers()
	require.Len(t, mods, 1)
	assert.Equal(t, 3.0, mods[0].Amount, "latest value wins")
}

func TestEjectWithinOneRefresh(t *testing.T) {
	env, rec := newEnv()
	d := Catalog(DefaultBalance())[Circulation]
	acc := item.New(d.Registry, d.Name, d)
	coreItem := newCore(map[string]int{"strength": 3})
	w := newWearer(coreItem, acc)
	c := NewController(d, acc, env)
	c.OnEquipped(w, 0)
	require.Equal(t, 26.0, w.attrs.Value(attribute.MaxHealth))

	setLevel(coreItem, "strength", 2)
	require.False(t, Check(d, w, env).Allowed)

	for i := 0; i < 20 && c.State() == EquippedValid; i++ {
		env.Scheduler.Advance(schedule.TickDuration)
	}
	assert.Equal(t, Unbound, c.State())
	assert.NotContains(t, w.slots, acc)
	assert.Equal(t, []*item.Item{acc}, w.storage)
	assert.Equal(t, 20.0, w.attrs.Value(attribute.MaxHealth))
	assert.Equal(t, "⚠ Circulation System needs at least 3 active modules (has 2)", w.lastNotice())
	assert.Equal(t, []Reason{ReasonInsufficient}, rec.ejected)
	assert.Equal(t, 0, env.Scheduler.Len())
}

func TestEjectDropsWhenStorageFull(t *testing.T) {
	env, _ := newEnv()
	d := Catalog(DefaultBalance())[Wishbone]
	acc := item.New(d.Registry, d.Name, d)
	coreItem := newCore(map[string]int{"strength": 5})
	w := newWearer(coreItem, acc)
	w.full = true
	c := NewController(d, acc, env)
	c.OnEquipped(w, 0)

	w.Unequip(coreItem)
	env.Scheduler.Advance(time.Second)

	assert.Equal(t, []*item.Item{acc}, w.dropped)
	assert.Equal(t, "⚠ Copper Wishbone needs a mechanical core!", w.lastNotice())
	_, ok := w.attrs.Get(attribute.Luck).Modifier(LuckModifierID)
	assert.False(t, ok)
}

func TestCriticalEnergyEjects(t *testing.T) {
	env, _ := newEnv()
	d := Catalog(DefaultBalance())[Circulation]
	acc := item.New(d.Registry, d.Name, d)
	coreItem := newCore(map[string]int{"strength": 5})
	w := newWearer(coreItem, acc)
	c := NewController(d, acc, env)
	c.OnEquipped(w, 0)

	coreItem.Store[core.KeyEnergy] = 10
	env.Scheduler.Advance(time.Second)
	assert.Equal(t, Unbound, c.State())
}

func TestOnUnequippedRemovesModifier(t *testing.T) {
	env, _ := newEnv()
	d := Catalog(DefaultBalance())[Exoskeleton]
	w := newWearer(newCore(map[string]int{"strength": 8, "energy_efficiency": 3}))
	c := NewController(d, item.New(d.Registry, d.Name, d), env)
	c.OnEquipped(w, 0)

	b := c.Binding()
	assert.InDelta(t, 1.1+0.06, b.Value, 1e-9)
	assert.InDelta(t, 0.06, b.Sync, 1e-9)
	assert.Contains(t, w.lastNotice(), "damage +116%")

	c.OnUnequipped(w)
	assert.Equal(t, Unbound, c.State())
	assert.Empty(t, w.attrs.Get(attribute.AttackDamage).Modifiers())
	assert.Equal(t, "✦ Mechanical Exoskeleton removed", w.lastNotice())
	assert.Equal(t, 0, env.Scheduler.Len())
}

func TestDetachIsSilent(t *testing.T) {
	env, _ := newEnv()
	d := Catalog(DefaultBalance())[Circulation]
	w := newWearer(newCore(map[string]int{"strength": 4}))
	c := NewController(d, item.New(d.Registry, d.Name, d), env)
	c.OnEquipped(w, 0)
	notices := len(w.notices)

	c.Detach(w)
	assert.Equal(t, Unbound, c.State())
	assert.Len(t, w.notices, notices)
	assert.Equal(t, 20.0, w.attrs.Value(attribute.MaxHealth))
	assert.Equal(t, 0, env.Scheduler.Len())
	assert.Equal(t, 4, c.Binding().Active)
}

func TestUnlocks(t *testing.T) {
	env, _ := newEnv()
	d := Catalog(DefaultBalance())[MagnetRing]
	coreItem := newCore(map[string]int{"strength": 7})
	w := newWearer(coreItem)
	c := NewController(d, item.New(d.Registry, d.Name, d), env)
	assert.False(t, c.Unlocked(UnlockSmelting))

	c.OnEquipped(w, 0)
	assert.True(t, c.Unlocked(UnlockSmelting))
	assert.False(t, c.Unlocked(UnlockDoubleDrop))
	assert.Equal(t, 9.0, c.Binding().Value)

	setLevel(coreItem, "strength", 10)
	env.Scheduler.Advance(time.Second)
	assert.True(t, c.Unlocked(UnlockDoubleDrop))
}

func TestVoidBackpackAutoCollectsWheneverWornByDefault(t *testing.T) {
	b := DefaultBalance()
	require.LessOrEqual(t, b.VoidBackpack.AutoCollectAt, b.VoidBackpack.Required)

	env, _ := newEnv()
	d := Catalog(b)[VoidBackpack]
	w := newWearer(newCore(map[string]int{"strength": b.VoidBackpack.Required}))
	c := NewController(d, item.New(d.Registry, d.Name, d), env)
	assert.False(t, c.Unlocked(UnlockAutoCollect))

	c.OnEquipped(w, 0)
	require.Equal(t, EquippedValid, c.State())
	assert.True(t, c.Unlocked(UnlockAutoCollect))
}

func TestAutoCollectAboveRequiredIsAMilestone(t *testing.T) {
	b := DefaultBalance()
	b.VoidBackpack.AutoCollectAt = b.VoidBackpack.Required + 2

	env, _ := newEnv()
	d := Catalog(b)[VoidBackpack]
	coreItem := newCore(map[string]int{"strength": b.VoidBackpack.Required})
	w := newWearer(coreItem)
	c := NewController(d, item.New(d.Registry, d.Name, d), env)
	c.OnEquipped(w, 0)
	require.Equal(t, EquippedValid, c.State())
	assert.False(t, c.Unlocked(UnlockAutoCollect))

	setLevel(coreItem, "strength", b.VoidBackpack.AutoCollectAt)
	env.Scheduler.Advance(time.Second)
	assert.True(t, c.Unlocked(UnlockAutoCollect))
}

func TestReadBindingFromEmptyStore(t *testing.T) {
	d := Catalog(DefaultBalance())[RiftGlove]
	assert.Equal(t, Binding{}, ReadBinding(d, nil))
}
