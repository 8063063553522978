// Package ssh puts a tcell screen on a gliderlabs/ssh session so each
// connection gets its own sandbox board.
package ssh

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
)

// Tty implements tcell.Tty over one SSH session channel.
type Tty struct {
	sess   gossh.Session
	resize <-chan gossh.Window

	mu     sync.Mutex
	win    gossh.Window
	onSize func() // registered by tcell
}

// NewTty wraps s. pty carries the initial window; resize delivers later
// window changes.
func NewTty(s gossh.Session, pty gossh.Pty, resize <-chan gossh.Window) *Tty {
	return &Tty{sess: s, resize: resize, win: pty.Window}
}

// Read is keyboard input from the client.
func (t *Tty) Read(b []byte) (int, error) { return t.sess.Read(b) }

// Write is rendered output to the client.
func (t *Tty) Write(b []byte) (int, error) { return t.sess.Write(b) }

func (t *Tty) Close() error { return t.sess.Close() }

// The channel is opened and torn down by the SSH server, and writes are
// not buffered, so Start, Stop and Drain have nothing to do.
func (t *Tty) Start() error { return nil }
func (t *Tty) Stop() error  { return nil }
func (t *Tty) Drain() error { return nil }

// WindowSize returns the latest terminal dimensions.
func (t *Tty) WindowSize() (tcell.WindowSize, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tcell.WindowSize{Width: t.win.Width, Height: t.win.Height}, nil
}

// NotifyResize registers cb and starts forwarding window changes to it for
// the lifetime of the session.
func (t *Tty) NotifyResize(cb func()) {
	t.mu.Lock()
	t.onSize = cb
	t.mu.Unlock()

	go func() {
		for win := range t.resize {
			t.mu.Lock()
			t.win = win
			cb := t.onSize
			t.mu.Unlock()
			if cb != nil {
				cb()
			}
		}
	}()
}

var _ tcell.Tty = (*Tty)(nil)
