// Package player is the sandbox's wearer: accessory slots, general storage,
// attributes, health and a notice log.
package player

import (
	"github.com/google/uuid"

	"mechcore/internal/attribute"
	"mechcore/internal/item"
)

const (
	// DefaultSlots is the number of accessory slots.
	DefaultSlots = 7
	// DefaultStorage is the general storage capacity.
	DefaultStorage = 27
	// MaxNotices bounds the notice log.
	MaxNotices = 50

	BaseHealth = 20
	BaseAttack = 4
)

// Player implements accessory.Wearer.
type Player struct {
	ID   uuid.UUID
	Name string

	Health float64

	slots    []*item.Item
	storage  []*item.Item
	capacity int
	attrs    *attribute.Set
	notices  []string

	// OnDrop receives items dropped into the world. Nil discards them.
	OnDrop func(*item.Item)
}

// New returns a player at full health with empty slots and storage.
func New(name string) *Player {
	p := &Player{
		ID:       uuid.New(),
		Name:     name,
		slots:    make([]*item.Item, DefaultSlots),
		capacity: DefaultStorage,
		attrs: attribute.NewSet(map[attribute.Name]float64{
			attribute.MaxHealth:    BaseHealth,
			attribute.Luck:         0,
			attribute.AttackDamage: BaseAttack,
		}),
	}
	p.Health = p.MaxHealth()
	return p
}

// Slots returns the occupied accessory slots in slot order.
func (p *Player) Slots() []*item.Item {
	out := make([]*item.Item, 0, len(p.slots))
	for _, it := range p.slots {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}

// Slot returns the item in slot i, or nil.
func (p *Player) Slot(i int) *item.Item {
	if i < 0 || i >= len(p.slots) {
		return nil
	}
	return p.slots[i]
}

// SlotCount is the number of accessory slots.
func (p *Player) SlotCount() int { return len(p.slots) }

// SlotOf returns the slot holding it, or -1.
func (p *Player) SlotOf(it *item.Item) int {
	for i, s := range p.slots {
		if s == it {
			return i
		}
	}
	return -1
}

// FreeSlot returns the first empty slot, or -1.
func (p *Player) FreeSlot() int {
	for i, s := range p.slots {
		if s == nil {
			return i
		}
	}
	return -1
}

// PutSlot places it in slot i. It reports false if i is out of range or
// occupied.
func (p *Player) PutSlot(i int, it *item.Item) bool {
	if i < 0 || i >= len(p.slots) || p.slots[i] != nil || it == nil {
		return false
	}
	p.slots[i] = it
	return true
}

// Unequip clears the slot holding it.
func (p *Player) Unequip(it *item.Item) bool {
	i := p.SlotOf(it)
	if i < 0 {
		return false
	}
	p.slots[i] = nil
	return true
}

// Storage returns general storage in insertion order.
func (p *Player) Storage() []*item.Item { return p.storage }

// StorageCapacity is the general storage size.
func (p *Player) StorageCapacity() int { return p.capacity }

// SetStorageCapacity resizes storage. Items beyond n stay until taken.
func (p *Player) SetStorageCapacity(n int) { p.capacity = max(n, 0) }

// Stash adds it to general storage, reporting false when full.
func (p *Player) Stash(it *item.Item) bool {
	if it == nil || len(p.storage) >= p.capacity {
		return false
	}
	p.storage = append(p.storage, it)
	return true
}

// Take removes it from general storage.
func (p *Player) Take(it *item.Item) bool {
	for i, s := range p.storage {
		if s == it {
			p.storage = append(p.storage[:i], p.storage[i+1:]...)
			return true
		}
	}
	return false
}

// Drop hands it to OnDrop.
func (p *Player) Drop(it *item.Item) {
	if p.OnDrop != nil {
		p.OnDrop(it)
	}
}

// Items returns every carried item: slots first, then storage.
func (p *Player) Items() []*item.Item {
	return append(p.Slots(), p.storage...)
}

// Attributes returns the player's attribute set.
func (p *Player) Attributes() *attribute.Set { return p.attrs }

// MaxHealth is the modified health ceiling.
func (p *Player) MaxHealth() float64 { return p.attrs.Value(attribute.MaxHealth) }

// AttackDamage is the modified attack damage.
func (p *Player) AttackDamage() float64 { return p.attrs.Value(attribute.AttackDamage) }

// Luck is the modified luck.
func (p *Player) Luck() float64 { return p.attrs.Value(attribute.Luck) }

// AttributeChanged clamps health to a lowered ceiling.
func (p *Player) AttributeChanged(n attribute.Name) {
	if n == attribute.MaxHealth {
		p.Health = min(p.Health, p.MaxHealth())
	}
}

// Heal adds amount up to the ceiling.
func (p *Player) Heal(amount float64) {
	p.Health = min(p.Health+amount, p.MaxHealth())
}

// Notify appends msg to the notice log, dropping the oldest beyond
// MaxNotices.
func (p *Player) Notify(msg string) {
	p.notices = append(p.notices, msg)
	if len(p.notices) > MaxNotices {
		p.notices = p.notices[len(p.notices)-MaxNotices:]
	}
}

// Notices returns the notice log, oldest first.
func (p *Player) Notices() []string { return p.notices }
