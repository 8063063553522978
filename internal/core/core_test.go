package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechcore/internal/energy"
	"mechcore/internal/item"
	"mechcore/internal/ledger"
	"mechcore/internal/store"
)

func TestFindPrefersFirstCore(t *testing.T) {
	ring := item.New("mechcore:magnet_ring", "Magnet Ring", nil)
	first := item.New("mechcore:core", "Core A", DefaultSpec)
	second := item.New("mechcore:core", "Core B", DefaultSpec)

	c, it := Find([]*item.Item{nil, ring, first, second})
	require.NotNil(t, c)
	assert.Same(t, first, it)
}

func TestFindLegacyRegistryName(t *testing.T) {
	cases := []struct {
		registry string
		want     bool
	}{
		{"moremod:mechanical_core", true},
		{"MOREMOD:MechanicalCore", true},
		{"moremod:core_mechanical_v2", true},
		{"moremod:mechanical_arm", false},
		{"moremod:apple_core", false},
	}
	for _, tc := range cases {
		t.Run(tc.registry, func(t *testing.T) {
			c, _ := Find([]*item.Item{{Registry: tc.registry}})
			assert.Equal(t, tc.want, c != nil)
		})
	}
}

func TestFindNone(t *testing.T) {
	c, it := Find(nil)
	assert.Nil(t, c)
	assert.Nil(t, it)
}

func TestMechanicalEnergy(t *testing.T) {
	it := item.New("mechcore:core", "Core", Spec{BaseCapacity: 100, CapacityPerLevel: 50})
	m := Of(it).(*Mechanical)
	assert.Equal(t, 100, m.Capacity())

	assert.Equal(t, 100, m.Receive(500, false))
	assert.Equal(t, 100, m.Stored())
	assert.Equal(t, 40, m.Extract(40, false))
	assert.Equal(t, 60, m.Stored())
	assert.Equal(t, 60, m.Extract(999, true))
	assert.Equal(t, 60, m.Stored())

	it.Store[ledger.KeyUpgrades] = store.Compound{"energy_capacity": store.Compound{"level": 2, "enabled": true}}
	assert.Equal(t, 200, m.Capacity())
	m.SetStored(1000)
	assert.Equal(t, 200, m.Stored())
}

func TestCapacityFollowsReconciler(t *testing.T) {
	it := item.New("mechcore:core", "Core", Spec{BaseCapacity: 100, CapacityPerLevel: 50})
	it.Store[ledger.KeyUpgrades] = store.Compound{"energy_capacity": store.Compound{"level": 2, "enabled": true}}
	it.Store[ledger.PrefixUpgrade+"energy_capacity"] = 4

	cases := []struct {
		name string
		rec  ledger.Reconciler
		want int
	}{
		{"default", nil, 200},
		{"prefer structured", ledger.PreferStructured, 200},
		{"prefer flat", ledger.PreferFlat, 300},
		{"highest level", ledger.HighestLevel, 300},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Reconciled(Of(it), tc.rec)
			assert.Equal(t, tc.want, c.Energy().Capacity())
		})
	}

	m := Of(it).(*Mechanical)
	Reconciled(m, ledger.HighestLevel)
	assert.Nil(t, m.Reconciler, "Reconciled copies the core")
}

func TestReconciledPassesOtherCores(t *testing.T) {
	var c Core = stubCore{}
	assert.Equal(t, c, Reconciled(c, ledger.HighestLevel))
}

type stubCore struct{}

func (stubCore) Ledger() store.Compound   { return nil }
func (stubCore) Energy() energy.Container { return nil }

func TestTypedItemNeverMatchesByName(t *testing.T) {
	exo := item.New("moremod:mechanical_core_exoskeleton", "Exoskeleton", struct{}{})
	assert.Nil(t, Of(exo))
}
