package editor

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"htmlpad/internal/editor/state"
)

func TestSetValueAndCaret(t *testing.T) {
	e := NewEditor()
	e.SetValue("abcdef")
	assert.Equal(t, state.Caret{Start: 6, End: 6}, e.Caret())

	e.SetCaret(3)
	assert.Equal(t, state.Caret{Start: 3, End: 3}, e.Caret())
	e.SetCaret(99)
	assert.Equal(t, 6, e.Caret().Start)
	e.SetCaret(-4)
	assert.Equal(t, 0, e.Caret().Start)
}

func TestInsertReplacesSelection(t *testing.T) {
	e := NewEditor()
	e.SetValue("hello world")
	e.Select(6, 11)
	e.InsertText("there")
	assert.Equal(t, "hello there", e.Value())
	assert.Equal(t, state.Caret{Start: 11, End: 11}, e.Caret())

	e.Select(5, 0)
	assert.Equal(t, state.Caret{Start: 0, End: 5}, e.Caret())
	e.InsertText("")
	assert.Equal(t, " there", e.Value())
}

func TestBackspaceAndDelete(t *testing.T) {
	e := NewEditor()
	e.SetValue("añb")
	e.SetCaret(2)
	e.Backspace()
	assert.Equal(t, "ab", e.Value())
	assert.Equal(t, 1, e.Caret().Start)
	e.Delete()
	assert.Equal(t, "a", e.Value())
	e.Delete()
	assert.Equal(t, "a", e.Value())
	e.SetCaret(0)
	e.Backspace()
	assert.Equal(t, "a", e.Value())
}

func TestMoveAcrossLines(t *testing.T) {
	e := NewEditor()
	e.SetValue("long line\nab\nxyz")
	e.SetCaret(7) // line 0 col 7
	e.Move(Down, false)
	line, col := e.Position()
	assert.Equal(t, 1, line)
	assert.Equal(t, 2, col, "clamped to line length")

	e.Move(Down, false)
	line, col = e.Position()
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)

	e.Move(Home, false)
	_, col = e.Position()
	assert.Equal(t, 0, col)
	e.Move(End, false)
	_, col = e.Position()
	assert.Equal(t, 3, col)

	e.Move(Up, true)
	assert.True(t, e.HasSelection())
	e.Move(Left, false)
	assert.False(t, e.HasSelection())
}

func TestScrollFollowsCaret(t *testing.T) {
	e := NewEditor()
	e.SetSize(10, 3)
	e.SetValue(strings.Repeat("x\n", 9) + "x")
	assert.Equal(t, 7, e.ScrollTop())
	e.SetCaret(0)
	assert.Equal(t, 0, e.ScrollTop())
	e.ScrollBy(100)
	assert.Equal(t, 7, e.ScrollTop())
	e.ScrollBy(-2)
	assert.Equal(t, 5, e.ScrollTop())
}

func TestViewExpandsTabsAndPads(t *testing.T) {
	e := NewEditor()
	e.TabWidth = 4
	e.SetSize(8, 2)
	e.SetValue("\tab")
	out := strings.Split(ansi.Strip(e.View(false)), "\n")
	assert.Equal(t, []string{"    ab  ", "        "}, out)
}

func TestViewHorizontalScroll(t *testing.T) {
	e := NewEditor()
	e.SetSize(4, 1)
	e.SetValue("abcdefgh")
	out := ansi.Strip(e.View(true))
	assert.Equal(t, "fgh ", out)
}

func TestClickAt(t *testing.T) {
	e := NewEditor()
	e.TabWidth = 4
	e.SetSize(20, 5)
	e.SetValue("one\n\ttwo")
	e.SetCaret(0)
	e.ClickAt(5, 1)
	line, col := e.Position()
	assert.Equal(t, 1, line)
	assert.Equal(t, 2, col)

	e.ClickAt(50, 9)
	line, col = e.Position()
	assert.Equal(t, 1, line)
	assert.Equal(t, 4, col)
}
