// Package gutter draws line labels beside the editor.
package gutter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var labelStyle = lipgloss.NewStyle().Faint(true)

// Gutter satisfies the session's Gutter.
type Gutter struct {
	labels []int
	top    int
}

func New() *Gutter { return &Gutter{labels: []int{1}} }

func (g *Gutter) SetLabels(labels []int) { g.labels = labels }
func (g *Gutter) SetScrollTop(top int)   { g.top = max(top, 0) }

func (g *Gutter) Labels() []int  { return g.labels }
func (g *Gutter) ScrollTop() int { return g.top }

// Width is the column count View uses, including one space of padding.
func (g *Gutter) Width() int {
	n := 1
	if len(g.labels) > 0 {
		n = len(fmt.Sprint(g.labels[len(g.labels)-1]))
	}
	return max(n, 2) + 1
}

// View renders height rows starting at the scroll offset.
func (g *Gutter) View(height int) string {
	w := g.Width() - 1
	rows := make([]string, 0, height)
	for i := g.top; i < g.top+height; i++ {
		if i < len(g.labels) {
			rows = append(rows, labelStyle.Render(fmt.Sprintf("%*d", w, g.labels[i]))+" ")
			continue
		}
		rows = append(rows, strings.Repeat(" ", w+1))
	}
	return strings.Join(rows, "\n")
}
