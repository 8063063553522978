package ecs

// EntityID uniquely identifies an entity in the world.
type EntityID uint64

// NilEntity is the zero value; no live entity has it.
const NilEntity EntityID = 0

// ComponentType keys a component store.
type ComponentType uint8

// Component is implemented by every value stored in the world.
type Component interface {
	Type() ComponentType
}
