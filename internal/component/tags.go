package component

import "mechcore/internal/ecs"

const CTarget ecs.ComponentType = 4

// Target marks a training target players can strike.
type Target struct {
	Name string
}

func (Target) Type() ecs.ComponentType { return CTarget }
