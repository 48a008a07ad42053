package gutter

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"htmlpad/internal/editor/state"
)

func TestViewFollowsScroll(t *testing.T) {
	g := New()
	g.SetLabels(state.LineLabels("a\nb\nc\nd"))
	g.SetScrollTop(2)
	out := strings.Split(ansi.Strip(g.View(3)), "\n")
	assert.Equal(t, []string{" 3 ", " 4 ", "   "}, out)
}

func TestWidthGrowsWithLabels(t *testing.T) {
	g := New()
	assert.Equal(t, 3, g.Width())
	g.SetLabels(state.LineLabels(strings.Repeat("\n", 120)))
	assert.Equal(t, 4, g.Width())
	assert.Len(t, g.Labels(), 121)
}

func TestNegativeScrollClamped(t *testing.T) {
	g := New()
	g.SetScrollTop(-5)
	assert.Equal(t, 0, g.ScrollTop())
}
