package chips

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"htmlpad/internal/tui/state"
	"htmlpad/internal/tui/util"
)

// View renders chips in the given order using colored chips when possible
// and ASCII fallbacks when color is disabled.
func View(chips []state.Chip, noColor bool) string {
	if len(chips) == 0 {
		return ""
	}
	if !noColor && os.Getenv("NO_COLOR") != "" {
		noColor = true
	}

	parts := make([]string, 0, len(chips))
	for _, c := range chips {
		parts = append(parts, renderChip(c, noColor))
	}
	return strings.Join(parts, " ")
}

func renderChip(c state.Chip, noColor bool) string {
	label := chipLabel(c)
	if noColor {
		return fmt.Sprintf("[%s]", label)
	}
	return chipStyle(c).Render(label)
}

func chipLabel(c state.Chip) string {
	switch c.Kind {
	case state.MODIFIED:
		return "Modified"
	case state.ERROR:
		return "Error"
	case state.RELAY:
		return "Relay"
	case state.BRIDGE:
		if c.Value == 1 {
			return "Bridge 1 tab"
		}
		return fmt.Sprintf("Bridge %d tabs", c.Value)
	case state.LINES:
		return fmt.Sprintf("Ln %d", c.Value)
	case state.CHARS:
		return fmt.Sprintf("Ch %d", c.Value)
	default:
		return "Chip"
	}
}

func chipStyle(c state.Chip) lipgloss.Style {
	p := util.DefaultPalette()
	base := lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(p.OnColor)
	switch c.Kind {
	case state.MODIFIED:
		return base.Background(p.Warning).Foreground(lipgloss.Color("#111111"))
	case state.ERROR:
		return base.Background(p.Danger)
	case state.RELAY:
		return base.Background(p.Primary)
	case state.BRIDGE:
		return base.Background(p.Success)
	case state.LINES:
		return base.Background(p.Muted)
	case state.CHARS:
		return base.Background(p.MutedDark)
	default:
		return base
	}
}
