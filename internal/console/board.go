// Package console draws a player's status board onto a tcell screen: the
// core's energy and tier, the accessory slots, general storage, the core's
// module ledger, the training target and recent notices.
package console

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Slot is one accessory slot line.
type Slot struct {
	Name   string
	State  string
	Detail string
}

// Module is one ledger record line.
type Module struct {
	ID        string
	Level     int
	Active    bool
	Permitted bool
	Paused    bool
}

// Target is the training target line.
type Target struct {
	Name         string
	Health, Max  float64
	Invulnerable int
	Window       int
}

// View is everything the board shows. The caller fills it while holding
// whatever lock guards the player.
type View struct {
	Player    string
	Health    float64
	MaxHealth float64
	Attack    float64
	Luck      float64

	HasCore  bool
	Energy   int
	Capacity int
	Tier     string
	Active   int

	Slots      []Slot // a zero Slot is an empty slot
	Storage    []string
	StorageCap int
	Modules    []Module
	Cursor     int
	Target     *Target
	Dropped    int
	Notices    []string
}

// HelpLine lists the board's keys.
const HelpLine = "1-9 equip  a-g unequip  j/k module  space pause  +/- energy  s strike  p pickup  q quit"

const (
	// The slot and storage panel takes what the module panel leaves, within
	// these bounds.
	minLeftWidth = 42
	maxLeftWidth = 64
	moduleWidth  = 31
	// minHeight is the smallest screen that gets more than the status line.
	minHeight = 12
)

var (
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleNotice = tcell.StyleDefault.Foreground(tcell.ColorLightYellow)
	styleCursor = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
)

// TierStyle colours a tier name.
func TierStyle(name string) tcell.Style {
	switch name {
	case "NORMAL":
		return tcell.StyleDefault.Foreground(tcell.ColorLime)
	case "POWER_SAVING":
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	case "EMERGENCY":
		return tcell.StyleDefault.Foreground(tcell.ColorOrange)
	}
	return tcell.StyleDefault.Foreground(tcell.ColorRed)
}

// Draw renders v onto screen and shows it.
func Draw(screen tcell.Screen, v View) {
	screen.Clear()
	w, h := screen.Size()
	left := leftWidth(w)

	drawStatus(screen, 0, v)
	if h < minHeight {
		screen.Show()
		return
	}
	drawHLine(screen, 1, styleDim)

	y := 2
	drawText(screen, 0, y, fmt.Sprintf("Slots (%d)", len(v.Slots)), styleTitle)
	y++
	for i, s := range v.Slots {
		key := rune('a' + i)
		line := fmt.Sprintf("%c -", key)
		style := styleDim
		if s.Name != "" {
			line = fmt.Sprintf("%c %s %s %s", key, Pad(s.Name, 22), Pad(s.State, 8), s.Detail)
			style = styleText
		}
		drawText(screen, 0, y, Fit(line, left-1), style)
		y++
	}
	y++
	title := fmt.Sprintf("Storage %d/%d", len(v.Storage), v.StorageCap)
	if v.Dropped > 0 {
		title += fmt.Sprintf("  (%d on the ground)", v.Dropped)
	}
	drawText(screen, 0, y, title, styleTitle)
	y++
	for i, name := range v.Storage {
		if y >= h-6 {
			break
		}
		prefix := "  "
		if i < 9 {
			prefix = fmt.Sprintf("%d ", i+1)
		}
		drawText(screen, 0, y, Fit(prefix+name, left-1), styleText)
		y++
	}

	drawModules(screen, left, 2, w-left, h-8, v)

	if v.Target != nil {
		t := v.Target
		line := fmt.Sprintf("Target %s  %.0f/%.0f  invuln %d/%d", t.Name, t.Health, t.Max, t.Invulnerable, t.Window)
		drawText(screen, left, h-7, Fit(line, w-left), styleText)
	}

	drawHLine(screen, h-6, styleDim)
	start := max(len(v.Notices)-4, 0)
	for i, msg := range v.Notices[start:] {
		drawText(screen, 0, h-5+i, Fit(msg, w), styleNotice)
	}
	drawText(screen, 0, h-1, Fit(HelpLine, w), styleDim)
	screen.Show()
}

// leftWidth sizes the slot panel for a screen w columns wide.
func leftWidth(w int) int {
	return min(max(w-moduleWidth, minLeftWidth), maxLeftWidth)
}

func drawStatus(screen tcell.Screen, y int, v View) {
	x := drawText(screen, 0, y, v.Player+"  ", styleTitle)
	stats := fmt.Sprintf("HP %.0f/%.0f  ATK %.1f  LUCK %.0f  ", v.Health, v.MaxHealth, v.Attack, v.Luck)
	x = drawText(screen, x, y, stats, styleText)
	if !v.HasCore {
		drawText(screen, x, y, "no core", TierStyle(""))
		return
	}
	pct := 0
	if v.Capacity > 0 {
		pct = v.Energy * 100 / v.Capacity
	}
	x = drawText(screen, x, y, fmt.Sprintf("⚡%d%% ", pct), styleText)
	x = drawText(screen, x, y, "["+v.Tier+"]", TierStyle(v.Tier))
	drawText(screen, x, y, fmt.Sprintf("  active %d", v.Active), styleText)
}

func drawModules(screen tcell.Screen, x, y, w, rows int, v View) {
	drawText(screen, x, y, "Core modules", styleTitle)
	y++
	for i, m := range v.Modules {
		if i >= rows {
			break
		}
		mark := "on"
		switch {
		case m.Paused:
			mark = "paused"
		case !m.Active:
			mark = "off"
		case !m.Permitted:
			mark = "gated"
		}
		line := fmt.Sprintf("%s L%-2d %s", Pad(m.ID, 20), m.Level, mark)
		style := styleText
		if mark != "on" {
			style = styleDim
		}
		if i == v.Cursor {
			style = styleCursor
		}
		drawText(screen, x, y+i, Fit(line, w), style)
	}
}
