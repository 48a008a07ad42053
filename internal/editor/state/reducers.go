package state

import (
	"strings"
	"unicode/utf8"
)

// LineLabels returns the gutter labels 1..N for text, where N is the number
// of newline-separated segments. Empty text still has one line.
func LineLabels(text string) []int {
	n := strings.Count(text, "\n") + 1
	labels := make([]int, n)
	for i := range labels {
		labels[i] = i + 1
	}
	return labels
}

// ComputeShares turns a drag gesture into panel shares.
//
// startX and startRight are captured on pointer-down, x is the current
// pointer position and container the container width, all in the same unit
// (pixels in the browser, cells in the terminal). The right panel is clamped
// to [min, container-min]; when the container is too narrow for both bounds
// they collapse to the midpoint.
func ComputeShares(startX, startRight, x, container, min int) PanelLayout {
	if container <= 0 {
		return DefaultLayout()
	}
	delta := startX - x
	right := clampWidth(startRight+delta, min, container-min, container)
	rightPct := float64(right) / float64(container) * 100
	return PanelLayout{LeftShare: 100 - rightPct}
}

func clampWidth(v, lo, hi, container int) int {
	if hi < lo {
		return container / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Widths converts shares back into whole units for a container. The two
// widths always add up to container.
func Widths(l PanelLayout, container int) (left, right int) {
	if container <= 0 {
		return 0, 0
	}
	right = int(float64(container)*l.RightShare()/100 + 0.5)
	if right > container {
		right = container
	}
	if right < 0 {
		right = 0
	}
	return container - right, right
}

// InsertIndent splices unit into text over the caret range and returns the
// new text and the caret position just after the inserted unit. Offsets are
// in runes and are clamped to the text.
func InsertIndent(text string, c Caret, unit string) (string, int) {
	runes := []rune(text)
	start, end := clampCaret(c, len(runes))
	var b strings.Builder
	b.Grow(len(text) + len(unit))
	b.WriteString(string(runes[:start]))
	b.WriteString(unit)
	b.WriteString(string(runes[end:]))
	return b.String(), start + utf8.RuneCountInString(unit)
}

func clampCaret(c Caret, n int) (int, int) {
	start, end := c.Start, c.End
	if start > end {
		start, end = end, start
	}
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start > n {
		start = n
	}
	if end < start {
		end = start
	}
	return start, end
}

// LineCol reports the zero-based line and column (in runes) of a rune offset.
func LineCol(text string, offset int) (line, col int) {
	for i, r := range []rune(text) {
		if i >= offset {
			break
		}
		if r == '\n' {
			line++
			col = 0
			continue
		}
		col++
	}
	return line, col
}
