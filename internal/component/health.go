package component

import "mechcore/internal/ecs"

const CHealth ecs.ComponentType = 1

type Health struct {
	Current, Max float64
}

func (Health) Type() ecs.ComponentType { return CHealth }
