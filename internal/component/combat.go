package component

import "mechcore/internal/ecs"

const CInvulnerability ecs.ComponentType = 2

// Invulnerability is a target's hit-immunity window in ticks. A landed hit
// resets Remaining to Max; hits are ignored while Remaining is above half
// of Max.
type Invulnerability struct {
	Remaining int
	Max       int
}

// DefaultInvulnerability is the stock window of 20 ticks.
const DefaultInvulnerability = 20

func (Invulnerability) Type() ecs.ComponentType { return CInvulnerability }
