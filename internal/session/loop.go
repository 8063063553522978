package session

import (
	"github.com/gdamore/tcell/v2"

	"mechcore/internal/console"
)

// RunLoop is the per-session goroutine. It reads input, queues actions and
// redraws the board whenever the ticker signals. It blocks until the
// player quits or disconnects.
func (s *Server) RunLoop(sess *Session) {
	if sess.Screen == nil {
		return
	}
	eventCh := make(chan tcell.Event, 32)
	go func() {
		for {
			ev := sess.Screen.PollEvent()
			if ev == nil {
				close(eventCh)
				return
			}
			eventCh <- ev
		}
	}()

	sess.signal()
	for {
		select {
		case ev, ok := <-eventCh:
			if !ok {
				return // screen closed / disconnected
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				sess.Screen.Sync()
				sess.signal()
			case *tcell.EventKey:
				a := keyToAction(ev)
				switch a.Kind {
				case ActionQuit:
					return
				case ActionNone:
				default:
					sess.Push(a)
				}
			}

		case <-sess.RenderCh:
			console.Draw(sess.Screen, s.View(sess))
		}
	}
}
