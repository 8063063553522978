package console

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Fit truncates s to at most w display columns, marking the cut with "…".
func Fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= w {
		return s
	}
	return runewidth.Truncate(s, w, "…")
}

// Pad fits s into exactly w display columns.
func Pad(s string, w int) string {
	return runewidth.FillRight(Fit(s, w), w)
}

// drawText writes s starting at (x, y) and returns the column after it.
// Wide runes advance two columns; zero-width runes are skipped.
func drawText(screen tcell.Screen, x, y int, s string, style tcell.Style) int {
	sw, _ := screen.Size()
	col := x
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col+rw > sw {
			break
		}
		screen.SetContent(col, y, r, nil, style)
		col += rw
	}
	return col
}

func drawHLine(screen tcell.Screen, y int, style tcell.Style) {
	w, _ := screen.Size()
	for x := 0; x < w; x++ {
		screen.SetContent(x, y, '─', nil, style)
	}
}
