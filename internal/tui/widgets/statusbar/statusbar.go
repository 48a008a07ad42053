package statusbar

import (
	"fmt"
	"strings"
)

// Status is what the bar reports.
type Status struct {
	Focus     string // "editor" or "preview"
	Line, Col int    // zero-based caret position
	LeftShare float64
	Dragging  bool
	Added     int
	Removed   int
	BridgeURL string
	Notice    string
}

type StatusBar struct{}

func NewStatusBar() StatusBar { return StatusBar{} }

// View composes a concise status line.
func (StatusBar) View(s Status) string {
	focus := "[EDIT]"
	if s.Focus == "preview" {
		focus = "[PREVIEW]"
	}
	pos := fmt.Sprintf("Ln %d, Col %d", s.Line+1, s.Col+1)
	split := fmt.Sprintf("Split %.0f/%.0f", s.LeftShare, 100-s.LeftShare)
	if s.Dragging {
		split += " ↔"
	}
	parts := []string{focus, pos, split}
	if s.Added > 0 || s.Removed > 0 {
		parts = append(parts, fmt.Sprintf("+%d -%d", s.Added, s.Removed))
	}
	if s.BridgeURL != "" {
		parts = append(parts, "Bridge: "+s.BridgeURL)
	}
	if s.Notice != "" {
		parts = append(parts, s.Notice)
	}
	return strings.Join(parts, "  ")
}
