package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"mechcore/internal/item"
	"mechcore/internal/store"
)

// StashSlot marks an entry held in general storage rather than a slot.
const StashSlot = -1

// Entry is one persisted item.
type Entry struct {
	ID       uuid.UUID      `json:"id"`
	Registry string         `json:"registry"`
	Name     string         `json:"name"`
	Store    store.Compound `json:"store,omitempty"`
	Slot     int            `json:"slot"`
}

// Loadout is everything a player carries.
type Loadout struct {
	Player  string    `json:"player"`
	Entries []Entry   `json:"entries"`
	SavedAt time.Time `json:"saved_at"`
}

// NewEntry snapshots it. The store is deep-copied.
func NewEntry(it *item.Item, slot int) Entry {
	return Entry{ID: it.ID, Registry: it.Registry, Name: it.Name, Store: it.Store.Clone(), Slot: slot}
}

// Item rebuilds the item without behavior; callers rehydrate it.
func (e Entry) Item() *item.Item {
	s := e.Store
	if s == nil {
		s = store.New()
	}
	return &item.Item{ID: e.ID, Registry: e.Registry, Name: e.Name, Store: s}
}

// Loadouts is the BadgerDB-backed loadout repository.
type Loadouts struct {
	db     *badger.DB
	logger *slog.Logger
}

// NewLoadouts wraps an open database.
func NewLoadouts(db *badger.DB, logger *slog.Logger) *Loadouts {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loadouts{db: db, logger: logger}
}

func loadoutKey(player string) []byte { return []byte("loadout/" + player) }

// Save writes l, replacing any previous loadout for the player.
func (r *Loadouts) Save(ctx context.Context, l Loadout) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.SavedAt.IsZero() {
		l.SavedAt = time.Now().UTC()
	}
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode loadout %s: %w", l.Player, err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(loadoutKey(l.Player), data)
	})
	if err != nil {
		return fmt.Errorf("save loadout %s: %w", l.Player, err)
	}
	r.logger.Debug("loadout saved", "player", l.Player, "items", len(l.Entries))
	return nil
}

// Load reads the player's loadout. It returns ErrNotFound when none is
// saved.
func (r *Loadouts) Load(ctx context.Context, player string) (Loadout, error) {
	if err := ctx.Err(); err != nil {
		return Loadout{}, err
	}
	var l Loadout
	err := r.db.View(func(txn *badger.Txn) error {
		it, err := txn.Get(loadoutKey(player))
		if err != nil {
			return err
		}
		return it.Value(func(val []byte) error {
			dec := json.NewDecoder(bytes.NewReader(val))
			dec.UseNumber()
			return dec.Decode(&l)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Loadout{}, ErrNotFound
	}
	if err != nil {
		return Loadout{}, fmt.Errorf("load loadout %s: %w", player, err)
	}
	return l, nil
}

// Delete removes the player's loadout. Deleting a missing loadout is not an
// error.
func (r *Loadouts) Delete(ctx context.Context, player string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(loadoutKey(player))
	})
	if err != nil {
		return fmt.Errorf("delete loadout %s: %w", player, err)
	}
	return nil
}
