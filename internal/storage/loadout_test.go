package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechcore/internal/item"
	"mechcore/internal/ledger"
	"mechcore/internal/store"
)

func openTest(t *testing.T) *Loadouts {
	t.Helper()
	db, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewLoadouts(db, nil)
}

func TestSaveLoadRoundTripKeepsLedger(t *testing.T) {
	r := openTest(t)
	ctx := context.Background()

	coreItem := item.New("mechcore:mechanical_core", "Core", nil)
	coreItem.Store.Set(ledger.KeyUpgrades, store.Compound{
		"strength": store.Compound{"level": 4, "enabled": true},
	})
	coreItem.Store.Set("upgrade_regen", 2)
	coreItem.Store.Set("IsPaused_regen", true)
	glove := item.New("mechcore:rift_glove", "Rift Glove", nil)
	glove.Store.Set("CachedReduction", 4.0)
	glove.Store.Set("LastUpdateTime", int64(1200))

	require.NoError(t, r.Save(ctx, Loadout{
		Player:  "ada",
		Entries: []Entry{NewEntry(coreItem, 0), NewEntry(glove, StashSlot)},
	}))

	got, err := r.Load(ctx, "ada")
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)
	assert.False(t, got.SavedAt.IsZero())

	restored := got.Entries[0].Item()
	assert.Equal(t, coreItem.ID, restored.ID)
	assert.Equal(t, ledger.Read(coreItem.Store, nil), ledger.Read(restored.Store, nil))

	g := got.Entries[1]
	assert.Equal(t, StashSlot, g.Slot)
	red, ok := g.Store.Float("CachedReduction")
	require.True(t, ok)
	assert.Equal(t, 4.0, red)
	tick, ok := g.Store.Int64("LastUpdateTime")
	require.True(t, ok)
	assert.Equal(t, int64(1200), tick)
}

func TestLoadMissing(t *testing.T) {
	r := openTest(t)
	_, err := r.Load(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	r := openTest(t)
	ctx := context.Background()
	require.NoError(t, r.Save(ctx, Loadout{Player: "ada"}))
	require.NoError(t, r.Delete(ctx, "ada"))
	_, err := r.Load(ctx, "ada")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, r.Delete(ctx, "ada"))
}

func TestCancelledContext(t *testing.T) {
	r := openTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Save(ctx, Loadout{Player: "ada"}), context.Canceled)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}
