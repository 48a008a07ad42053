package helpoverlay

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var box = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

// HelpOverlay renders key bindings in a short line or a full grid.
type HelpOverlay struct {
	model help.Model
}

func NewHelpOverlay() HelpOverlay { return HelpOverlay{model: help.New()} }

// SetWidth truncates the short view to width.
func (h *HelpOverlay) SetWidth(width int) { h.model.Width = width }

// Short is the one-line hint.
func (h HelpOverlay) Short(km help.KeyMap) string { return h.model.ShortHelpView(km.ShortHelp()) }

// View returns the full grid, boxed.
func (h HelpOverlay) View(km help.KeyMap) string {
	return box.Render("Keys\n\n" + h.model.FullHelpView(km.FullHelp()))
}

// Lines flattens the bindings as "keys: description" for plain output.
func Lines(km help.KeyMap) []string {
	var out []string
	for _, group := range km.FullHelp() {
		for _, b := range group {
			if !b.Enabled() {
				continue
			}
			out = append(out, bindingLine(b))
		}
	}
	return out
}

func bindingLine(b key.Binding) string {
	h := b.Help()
	return h.Key + ": " + h.Desc
}
