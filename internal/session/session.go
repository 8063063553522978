package session

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"mechcore/internal/accessory"
	"mechcore/internal/player"
)

// maxPending bounds the queued actions per session. Keys pressed while the
// queue is full are dropped.
const maxPending = 8

// Session holds all per-player state for one connection. It is created by
// Server.Join and disposed of by Server.Leave.
type Session struct {
	ID     int
	Name   string
	Player *player.Player

	// Cursor selects a core module on the board.
	Cursor int

	// I/O. Screen is nil for headless sessions.
	Screen tcell.Screen

	// Render trigger: the ticker sends here; the session's goroutine
	// drains and renders.
	RenderCh chan struct{}

	// controllers binds each accessory item worn or carried to its
	// controller, keyed by item id.
	controllers map[uuid.UUID]*accessory.Controller

	actionMu sync.Mutex
	pending  []Action
}

func newSession(id int, name string, p *player.Player, screen tcell.Screen) *Session {
	return &Session{
		ID:          id,
		Name:        name,
		Player:      p,
		Screen:      screen,
		RenderCh:    make(chan struct{}, 1),
		controllers: make(map[uuid.UUID]*accessory.Controller),
	}
}

// Push queues a for the next ticks and reports false when the queue is full.
func (s *Session) Push(a Action) bool {
	s.actionMu.Lock()
	defer s.actionMu.Unlock()
	if len(s.pending) >= maxPending {
		return false
	}
	s.pending = append(s.pending, a)
	return true
}

// TakeAction pops the oldest queued action.
func (s *Session) TakeAction() Action {
	s.actionMu.Lock()
	defer s.actionMu.Unlock()
	if len(s.pending) == 0 {
		return Action{}
	}
	a := s.pending[0]
	s.pending = s.pending[1:]
	return a
}

// Pending returns the number of queued actions.
func (s *Session) Pending() int {
	s.actionMu.Lock()
	defer s.actionMu.Unlock()
	return len(s.pending)
}

func (s *Session) signal() {
	select {
	case s.RenderCh <- struct{}{}:
	default:
	}
}
