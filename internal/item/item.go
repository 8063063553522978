// Package item is the carried-item model: an identity, a registry name, a
// persisted store and an optional typed behavior.
package item

import (
	"github.com/google/uuid"

	"mechcore/internal/store"
)

// Item is one item instance.
type Item struct {
	ID       uuid.UUID
	Registry string // e.g. "mechcore:mechanical_core"
	Name     string
	Store    store.Compound
	// Behavior is the typed capability the item exposes, such as a core or
	// an accessory definition. Nil for plain items.
	Behavior any
}

// New returns an item with a fresh ID and an empty store.
func New(registry, name string, behavior any) *Item {
	return &Item{
		ID:       uuid.New(),
		Registry: registry,
		Name:     name,
		Store:    store.New(),
		Behavior: behavior,
	}
}

// Tag returns the item's persisted store, creating it on first touch.
func (it *Item) Tag() store.Compound {
	if it.Store == nil {
		it.Store = store.New()
	}
	return it.Store
}
