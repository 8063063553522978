package attribute

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bonusID = uuid.MustParse("d3f6e719-8a24-4b9a-b5c3-2f8d9e4a6c12")

func TestApplyReplacesByIdentity(t *testing.T) {
	s := NewSet(map[Name]float64{MaxHealth: 20})
	s.Apply(MaxHealth, Modifier{ID: bonusID, Name: "circulation", Amount: 6, Op: Add})
	s.Apply(MaxHealth, Modifier{ID: bonusID, Name: "circulation", Amount: 10, Op: Add})

	mods := s.Get(MaxHealth).Modifiers()
	require.Len(t, mods, 1)
	assert.Equal(t, 10.0, mods[0].Amount)
	assert.Equal(t, 30.0, s.Value(MaxHealth))
}

func TestRemove(t *testing.T) {
	s := NewSet(map[Name]float64{Luck: 0})
	s.Apply(Luck, Modifier{ID: bonusID, Amount: 3})
	assert.True(t, s.Remove(Luck, bonusID))
	assert.False(t, s.Remove(Luck, bonusID))
	assert.Equal(t, 0.0, s.Value(Luck))
}

func TestValueOperations(t *testing.T) {
	in := &Instance{Base: 10}
	in.Apply(Modifier{ID: uuid.New(), Amount: 2, Op: Add})
	in.Apply(Modifier{ID: uuid.New(), Amount: 0.5, Op: MultiplyBase})
	in.Apply(Modifier{ID: uuid.New(), Amount: 1, Op: MultiplyTotal})
	// (10 + 2 + 10*0.5) * 2
	assert.InDelta(t, 34.0, in.Value(), 1e-9)
}

func TestDistinctIdentitiesStack(t *testing.T) {
	s := &Set{}
	s.Apply(AttackDamage, Modifier{ID: uuid.New(), Amount: 1})
	s.Apply(AttackDamage, Modifier{ID: uuid.New(), Amount: 1})
	assert.Equal(t, 2.0, s.Value(AttackDamage))
	assert.Equal(t, "attack_damage", AttackDamage.String())
}
