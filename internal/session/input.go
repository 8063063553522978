package session

import "github.com/gdamore/tcell/v2"

// ActionKind is a player-requested sandbox action.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	// ActionEquip quick-equips storage item Index.
	ActionEquip
	// ActionUnequip moves slot Index to storage.
	ActionUnequip
	ActionCursorUp
	ActionCursorDown
	// ActionTogglePause pauses or resumes the module under the cursor.
	ActionTogglePause
	ActionCharge
	ActionDrain
	ActionStrike
	ActionPickup
	ActionQuit
)

// Action is one queued request. Index is the storage or slot index for
// equip and unequip.
type Action struct {
	Kind  ActionKind
	Index int
}

// keyToAction maps a tcell key event to an action.
func keyToAction(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyUp:
		return Action{Kind: ActionCursorUp}
	case tcell.KeyDown:
		return Action{Kind: ActionCursorDown}
	case tcell.KeyEscape:
		return Action{Kind: ActionQuit}
	}
	r := ev.Rune()
	switch {
	case r >= '1' && r <= '9':
		return Action{Kind: ActionEquip, Index: int(r - '1')}
	case r >= 'a' && r <= 'g':
		return Action{Kind: ActionUnequip, Index: int(r - 'a')}
	}
	switch r {
	case 'k', 'K':
		return Action{Kind: ActionCursorUp}
	case 'j', 'J':
		return Action{Kind: ActionCursorDown}
	case ' ':
		return Action{Kind: ActionTogglePause}
	case '+', '=':
		return Action{Kind: ActionCharge}
	case '-', '_':
		return Action{Kind: ActionDrain}
	case 's', 'S':
		return Action{Kind: ActionStrike}
	case 'p', 'P':
		return Action{Kind: ActionPickup}
	case 'q', 'Q':
		return Action{Kind: ActionQuit}
	}
	return Action{}
}
