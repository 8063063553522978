// Package ecs is the sandbox's entity registry. Training targets and items
// dropped by ejection live here as entities with value components.
package ecs

import "sort"

// World is the entity registry and component store.
type World struct {
	nextID     EntityID
	alive      map[EntityID]bool
	components map[ComponentType]map[EntityID]Component
}

// NewWorld creates an empty World.
func NewWorld() *World {
	return &World{
		nextID:     1,
		alive:      make(map[EntityID]bool),
		components: make(map[ComponentType]map[EntityID]Component),
	}
}

// Spawn mints an entity and attaches cs to it.
func (w *World) Spawn(cs ...Component) EntityID {
	id := w.nextID
	w.nextID++
	w.alive[id] = true
	for _, c := range cs {
		w.Add(id, c)
	}
	return id
}

// Destroy removes the entity and all its components.
func (w *World) Destroy(id EntityID) {
	if !w.alive[id] {
		return
	}
	delete(w.alive, id)
	for _, store := range w.components {
		delete(store, id)
	}
}

// Alive reports whether the entity exists.
func (w *World) Alive(id EntityID) bool {
	return w.alive[id]
}

// Len is the number of live entities.
func (w *World) Len() int { return len(w.alive) }

// Add attaches or replaces a component. Adding to a dead entity is a no-op.
func (w *World) Add(id EntityID, c Component) {
	if !w.alive[id] {
		return
	}
	t := c.Type()
	if w.components[t] == nil {
		w.components[t] = make(map[EntityID]Component)
	}
	w.components[t][id] = c
}

// Get returns the component of type t on id, or nil.
func (w *World) Get(id EntityID, t ComponentType) Component {
	return w.components[t][id]
}

// Remove detaches a component.
func (w *World) Remove(id EntityID, t ComponentType) {
	delete(w.components[t], id)
}

// Has reports whether id carries a component of type t.
func (w *World) Has(id EntityID, t ComponentType) bool {
	return w.Get(id, t) != nil
}

// Query returns the live entities carrying every listed type, in ascending
// id order.
func (w *World) Query(types ...ComponentType) []EntityID {
	if len(types) == 0 {
		return nil
	}
	smallest := types[0]
	for _, t := range types[1:] {
		if len(w.components[t]) < len(w.components[smallest]) {
			smallest = t
		}
	}
	var result []EntityID
	for id := range w.components[smallest] {
		if !w.alive[id] {
			continue
		}
		match := true
		for _, t := range types {
			if !w.Has(id, t) {
				match = false
				break
			}
		}
		if match {
			result = append(result, id)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
