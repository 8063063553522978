package component

import (
	"mechcore/internal/ecs"
	"mechcore/internal/item"
)

const CDropped ecs.ComponentType = 3

// Dropped is an item lying in the world, usually because an ejection found
// its owner's storage full.
type Dropped struct {
	Item  *item.Item
	Owner string
}

func (Dropped) Type() ecs.ComponentType { return CDropped }
