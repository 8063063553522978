// Package attribute holds player attributes and the identity-keyed
// modifiers accessories apply to them.
package attribute

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Name identifies a player attribute.
type Name uint8

const (
	MaxHealth Name = iota
	Luck
	AttackDamage
)

func (n Name) String() string {
	switch n {
	case MaxHealth:
		return "max_health"
	case Luck:
		return "luck"
	case AttackDamage:
		return "attack_damage"
	}
	return fmt.Sprintf("Name(%d)", uint8(n))
}

// Operation is how a modifier combines with the base value.
type Operation uint8

const (
	// Add contributes Amount to the base.
	Add Operation = iota
	// MultiplyBase contributes base*Amount.
	MultiplyBase
	// MultiplyTotal scales the running total by 1+Amount.
	MultiplyTotal
)

// Modifier is a named, identity-keyed adjustment to one attribute.
type Modifier struct {
	ID     uuid.UUID
	Name   string
	Amount float64
	Op     Operation
}

// Instance is one attribute: a base value and at most one modifier per
// identity.
type Instance struct {
	Base      float64
	modifiers map[uuid.UUID]Modifier
}

// Apply installs m, first removing any modifier with the same ID.
func (in *Instance) Apply(m Modifier) {
	if in.modifiers == nil {
		in.modifiers = make(map[uuid.UUID]Modifier)
	}
	delete(in.modifiers, m.ID)
	in.modifiers[m.ID] = m
}

// Remove drops the modifier with id and reports whether one was present.
func (in *Instance) Remove(id uuid.UUID) bool {
	if _, ok := in.modifiers[id]; !ok {
		return false
	}
	delete(in.modifiers, id)
	return true
}

// Modifier returns the modifier with id, if present.
func (in *Instance) Modifier(id uuid.UUID) (Modifier, bool) {
	m, ok := in.modifiers[id]
	return m, ok
}

// Modifiers returns the active modifiers ordered by ID.
func (in *Instance) Modifiers() []Modifier {
	out := make([]Modifier, 0, len(in.modifiers))
	for _, m := range in.modifiers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// Value is the base with every modifier applied: additions first, then
// base multipliers, then total multipliers.
func (in *Instance) Value() float64 {
	v := in.Base
	for _, m := range in.modifiers {
		if m.Op == Add {
			v += m.Amount
		}
	}
	for _, m := range in.modifiers {
		if m.Op == MultiplyBase {
			v += in.Base * m.Amount
		}
	}
	for _, m := range in.Modifiers() {
		if m.Op == MultiplyTotal {
			v *= 1 + m.Amount
		}
	}
	return v
}

// Set is a player's attributes.
type Set struct {
	attrs map[Name]*Instance
}

// NewSet returns a Set with the given base values.
func NewSet(base map[Name]float64) *Set {
	s := &Set{attrs: make(map[Name]*Instance, len(base))}
	for n, v := range base {
		s.attrs[n] = &Instance{Base: v}
	}
	return s
}

// Get returns the instance for n, creating it at base 0.
func (s *Set) Get(n Name) *Instance {
	if s.attrs == nil {
		s.attrs = make(map[Name]*Instance)
	}
	in, ok := s.attrs[n]
	if !ok {
		in = &Instance{}
		s.attrs[n] = in
	}
	return in
}

// Apply installs m on attribute n, replacing any modifier with m.ID.
func (s *Set) Apply(n Name, m Modifier) { s.Get(n).Apply(m) }

// Remove drops the modifier id from attribute n.
func (s *Set) Remove(n Name, id uuid.UUID) bool { return s.Get(n).Remove(id) }

// Value returns the modified value of attribute n.
func (s *Set) Value(n Name) float64 { return s.Get(n).Value() }
