// Package editor is the terminal source buffer: a rune buffer with a caret,
// an optional selection and a scrolling window.
package editor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"htmlpad/internal/editor/state"
)

const defaultTabWidth = 4

var (
	caretStyle = lipgloss.NewStyle().Reverse(true)
	selStyle   = lipgloss.NewStyle().Background(lipgloss.AdaptiveColor{Light: "153", Dark: "24"})
)

// Editor satisfies the session's TextInput.
type Editor struct {
	text   []rune
	caret  int
	anchor int // selection is [min(anchor,caret), max(anchor,caret))

	top, left     int
	width, height int
	TabWidth      int
}

func NewEditor() *Editor { return &Editor{TabWidth: defaultTabWidth, width: 40, height: 10} }

func (e *Editor) Value() string { return string(e.text) }

// SetValue replaces the buffer and puts the caret at the end.
func (e *Editor) SetValue(text string) {
	e.text = []rune(text)
	e.caret = len(e.text)
	e.anchor = e.caret
	e.follow()
}

func (e *Editor) Caret() state.Caret {
	a, b := e.anchor, e.caret
	if a > b {
		a, b = b, a
	}
	return state.Caret{Start: a, End: b}
}

// SetCaret collapses the selection at pos.
func (e *Editor) SetCaret(pos int) {
	e.caret = clamp(pos, 0, len(e.text))
	e.anchor = e.caret
	e.follow()
}

// Select sets a selection from anchor to caret.
func (e *Editor) Select(anchor, caret int) {
	e.anchor = clamp(anchor, 0, len(e.text))
	e.caret = clamp(caret, 0, len(e.text))
	e.follow()
}

func (e *Editor) HasSelection() bool { return e.anchor != e.caret }

// SetSize sets the visible window in cells.
func (e *Editor) SetSize(width, height int) {
	e.width, e.height = max(width, 1), max(height, 1)
	e.follow()
}

// ScrollTop is the first visible line.
func (e *Editor) ScrollTop() int { return e.top }

// ScrollBy moves the window without moving the caret.
func (e *Editor) ScrollBy(lines int) {
	e.top = clamp(e.top+lines, 0, max(e.lineCount()-e.height, 0))
}

// Position reports the zero-based line and column of the caret.
func (e *Editor) Position() (line, col int) { return state.LineCol(string(e.text), e.caret) }

// InsertText replaces the selection with s.
func (e *Editor) InsertText(s string) {
	c := e.Caret()
	ins := []rune(s)
	out := make([]rune, 0, len(e.text)-(c.End-c.Start)+len(ins))
	out = append(out, e.text[:c.Start]...)
	out = append(out, ins...)
	out = append(out, e.text[c.End:]...)
	e.text = out
	e.SetCaret(c.Start + len(ins))
}

// Backspace deletes the selection or the rune before the caret.
func (e *Editor) Backspace() {
	if e.HasSelection() {
		e.InsertText("")
		return
	}
	if e.caret == 0 {
		return
	}
	e.text = append(e.text[:e.caret-1], e.text[e.caret:]...)
	e.SetCaret(e.caret - 1)
}

// Delete deletes the selection or the rune after the caret.
func (e *Editor) Delete() {
	if e.HasSelection() {
		e.InsertText("")
		return
	}
	if e.caret >= len(e.text) {
		return
	}
	e.text = append(e.text[:e.caret], e.text[e.caret+1:]...)
	e.SetCaret(e.caret)
}

// Move directions.
const (
	Left = iota
	Right
	Up
	Down
	Home
	End
	PageUp
	PageDown
)

// Move moves the caret. With extend the selection anchor stays put.
func (e *Editor) Move(dir int, extend bool) {
	line, col := e.Position()
	pos := e.caret
	switch dir {
	case Left:
		if !extend && e.HasSelection() {
			pos = e.Caret().Start
		} else {
			pos--
		}
	case Right:
		if !extend && e.HasSelection() {
			pos = e.Caret().End
		} else {
			pos++
		}
	case Up:
		pos = e.offset(line-1, col)
	case Down:
		pos = e.offset(line+1, col)
	case Home:
		pos = e.offset(line, 0)
	case End:
		pos = e.offset(line, len(e.line(line)))
	case PageUp:
		pos = e.offset(line-e.height, col)
	case PageDown:
		pos = e.offset(line+e.height, col)
	}
	pos = clamp(pos, 0, len(e.text))
	if extend {
		e.caret = pos
		e.follow()
		return
	}
	e.SetCaret(pos)
}

// ClickAt places the caret at a cell inside the window.
func (e *Editor) ClickAt(x, y int) {
	line := clamp(e.top+y, 0, e.lineCount()-1)
	e.SetCaret(e.offset(line, e.columnAt(e.line(line), e.left+x)))
}

// View renders the window. The caret is drawn only when focused.
func (e *Editor) View(focused bool) string {
	lines := e.lines()
	c := e.Caret()
	caretLine, _ := e.Position()

	start := 0
	for i := 0; i < e.top && i < len(lines); i++ {
		start += len(lines[i]) + 1
	}

	out := make([]string, 0, e.height)
	for i := e.top; i < e.top+e.height; i++ {
		if i >= len(lines) {
			out = append(out, strings.Repeat(" ", e.width))
			continue
		}
		var b strings.Builder
		cells := 0
		col := 0
		emit := func(s string, off int) {
			for _, r := range s {
				if cells >= e.left && cells < e.left+e.width {
					cell := string(r)
					switch {
					case focused && off == e.caret:
						cell = caretStyle.Render(cell)
					case off >= c.Start && off < c.End:
						cell = selStyle.Render(cell)
					}
					b.WriteString(cell)
				}
				cells++
			}
		}
		for j, r := range lines[i] {
			off := start + j
			if r == '\t' {
				n := e.tab() - col%e.tab()
				emit(strings.Repeat(" ", n), off)
				col += n
				continue
			}
			emit(string(r), off)
			col++
		}
		end := start + len(lines[i])
		if focused && i == caretLine && e.caret == end && cells >= e.left && cells < e.left+e.width {
			b.WriteString(caretStyle.Render(" "))
			cells++
		}
		if pad := e.left + e.width - max(cells, e.left); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		out = append(out, b.String())
		start = end + 1
	}
	return strings.Join(out, "\n")
}

func (e *Editor) tab() int {
	if e.TabWidth <= 0 {
		return defaultTabWidth
	}
	return e.TabWidth
}

func (e *Editor) lines() [][]rune {
	out := [][]rune{{}}
	for _, r := range e.text {
		if r == '\n' {
			out = append(out, []rune{})
			continue
		}
		out[len(out)-1] = append(out[len(out)-1], r)
	}
	return out
}

func (e *Editor) lineCount() int {
	n := 1
	for _, r := range e.text {
		if r == '\n' {
			n++
		}
	}
	return n
}

func (e *Editor) line(n int) []rune {
	lines := e.lines()
	if n < 0 || n >= len(lines) {
		return nil
	}
	return lines[n]
}

// offset converts a line and rune column to a buffer offset, clamping both.
func (e *Editor) offset(line, col int) int {
	lines := e.lines()
	line = clamp(line, 0, len(lines)-1)
	off := 0
	for i := 0; i < line; i++ {
		off += len(lines[i]) + 1
	}
	return off + clamp(col, 0, len(lines[line]))
}

// displayCol is the cell column of rune column col, with tabs expanded.
func (e *Editor) displayCol(line []rune, col int) int {
	cells := 0
	for i := 0; i < col && i < len(line); i++ {
		if line[i] == '\t' {
			cells += e.tab() - cells%e.tab()
			continue
		}
		cells++
	}
	return cells
}

// columnAt is the rune column drawn at cell x.
func (e *Editor) columnAt(line []rune, x int) int {
	cells := 0
	for i, r := range line {
		w := 1
		if r == '\t' {
			w = e.tab() - cells%e.tab()
		}
		if x < cells+w {
			return i
		}
		cells += w
	}
	return len(line)
}

// follow scrolls so the caret stays visible.
func (e *Editor) follow() {
	line, col := e.Position()
	if line < e.top {
		e.top = line
	}
	if line >= e.top+e.height {
		e.top = line - e.height + 1
	}
	e.top = clamp(e.top, 0, max(e.lineCount()-1, 0))

	cell := e.displayCol(e.line(line), col)
	if cell < e.left {
		e.left = cell
	}
	if cell >= e.left+e.width {
		e.left = cell - e.width + 1
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
