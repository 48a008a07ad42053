// Package toolbar lays out the clickable control buttons.
package toolbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"htmlpad/internal/editor"
	"htmlpad/internal/tui/util"
)

// Button is one control on the toolbar.
type Button struct {
	Label   string
	Control editor.Control
}

// Buttons returns the toolbar controls in display order.
func Buttons() []Button {
	return []Button{
		{"Run", editor.ControlRun},
		{"Refresh", editor.ControlRefresh},
		{"Example", editor.ControlExample},
		{"Clear", editor.ControlClear},
	}
}

const gap = 1

func buttonStyle() lipgloss.Style {
	p := util.DefaultPalette()
	return lipgloss.NewStyle().Padding(0, 1).Background(p.Primary).Foreground(p.OnColor).Bold(true)
}

// View renders the buttons on one row.
func View(noColor bool) string {
	parts := make([]string, 0, len(Buttons()))
	for _, b := range Buttons() {
		if noColor {
			parts = append(parts, "[ "+b.Label+" ]")
			continue
		}
		parts = append(parts, buttonStyle().Render(b.Label))
	}
	return strings.Join(parts, strings.Repeat(" ", gap))
}

// HitTest returns the control under column x of the row View draws.
func HitTest(x int, noColor bool) (editor.Control, bool) {
	pos := 0
	for _, b := range Buttons() {
		w := len(b.Label) + 2
		if noColor {
			w += 2
		}
		if x >= pos && x < pos+w {
			return b.Control, true
		}
		pos += w + gap
	}
	return "", false
}
