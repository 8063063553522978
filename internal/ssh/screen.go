package ssh

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
)

// ErrNoPTY is returned for sessions opened without a terminal.
var ErrNoPTY = errors.New("session has no pty")

// DefaultTerm is used when the client's TERM is missing or not allowed.
const DefaultTerm = "xterm-256color"

// AllowedTerms are the terminal types whose terminfo entries the server
// will load on a client's behalf.
var AllowedTerms = map[string]bool{
	"xterm":                 true,
	"xterm-256color":        true,
	"screen":                true,
	"screen-256color":       true,
	"tmux":                  true,
	"tmux-256color":         true,
	"linux":                 true,
	"vt100":                 true,
	"vt220":                 true,
	"rxvt-unicode":          true,
	"rxvt-unicode-256color": true,
}

// Term picks the terminal type from a session environment.
func Term(environ []string) string {
	for _, kv := range environ {
		if v, ok := strings.CutPrefix(kv, "TERM="); ok {
			if AllowedTerms[v] {
				return v
			}
			break
		}
	}
	return DefaultTerm
}

// NewScreen creates and initialises a tcell screen drawing to s.
func NewScreen(s gossh.Session) (tcell.Screen, error) {
	pty, resize, ok := s.Pty()
	if !ok {
		return nil, ErrNoPTY
	}
	ti, err := tcell.LookupTerminfo(Term(s.Environ()))
	if err != nil {
		return nil, fmt.Errorf("terminfo: %w", err)
	}
	screen, err := tcell.NewTerminfoScreenFromTtyTerminfo(NewTty(s, pty, resize), ti)
	if err != nil {
		return nil, fmt.Errorf("terminal setup: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("screen init: %w", err)
	}
	return screen, nil
}
