// Package diff shows how the buffer has moved on since the last render.
package diff

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	dmp "github.com/sergi/go-diff/diffmatchpatch"
)

var (
	delLine = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
	addLine = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "114"})
	delChar = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"}).Underline(true)
	addChar = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "114"}).Underline(true)
	faint   = lipgloss.NewStyle().Faint(true)
	header  = lipgloss.NewStyle().Bold(true)
)

type Mode int

const (
	Unified Mode = iota
	SideBySide
)

type DiffView struct{}

func NewDiffView() DiffView { return DiffView{} }

// View renders rendered (the last rendered source) against current.
func (DiffView) View(mode Mode, width int, rendered, current string) string {
	if rendered == current {
		return header.Render("RENDERED vs BUFFER") + "\nNo changes since last render\n"
	}
	if mode == SideBySide {
		return sideBySide(rendered, current, width)
	}
	return unified(rendered, current)
}

// Stats counts lines added and removed between before and after.
func Stats(before, after string) (added, removed int) {
	d := dmp.New()
	a, b, lines := d.DiffLinesToChars(before, after)
	diffs := d.DiffCharsToLines(d.DiffMain(a, b, false), lines)
	for _, df := range diffs {
		n := strings.Count(df.Text, "\n")
		if !strings.HasSuffix(df.Text, "\n") {
			n++
		}
		switch df.Type {
		case dmp.DiffInsert:
			added += n
		case dmp.DiffDelete:
			removed += n
		}
	}
	return added, removed
}

// unified pairs lines by hunk and highlights changed characters.
func unified(before, after string) string {
	var sb strings.Builder
	sb.WriteString(header.Render("RENDERED vs BUFFER (Unified)") + "\n")
	for _, h := range hunks(before, after) {
		switch {
		case h.equal:
			for _, l := range h.del {
				if strings.TrimSpace(l) == "" {
					continue
				}
				sb.WriteString("  " + faint.Render(l) + "\n")
			}
		default:
			n := max(len(h.del), len(h.add))
			var dels, adds []string
			for i := 0; i < n; i++ {
				var bl, al string
				hasB, hasA := i < len(h.del), i < len(h.add)
				if hasB {
					bl = h.del[i]
				}
				if hasA {
					al = h.add[i]
				}
				l, r := charSpans(bl, al)
				if hasB {
					dels = append(dels, delLine.Render("- ")+l)
				}
				if hasA {
					adds = append(adds, addLine.Render("+ ")+r)
				}
			}
			for _, l := range dels {
				sb.WriteString(l + "\n")
			}
			for _, l := range adds {
				sb.WriteString(l + "\n")
			}
		}
	}
	return sb.String()
}

func sideBySide(before, after string, width int) string {
	const sep = " │ "
	col := 40
	if width > 0 {
		col = max((width-len(sep))/2, 10)
	}
	var sb strings.Builder
	sb.WriteString(header.Render(pad("RENDERED", col)+sep+"BUFFER") + "\n")
	for _, h := range hunks(before, after) {
		n := max(len(h.del), len(h.add))
		for i := 0; i < n; i++ {
			var bl, al string
			if i < len(h.del) {
				bl = h.del[i]
			}
			if i < len(h.add) {
				al = h.add[i]
			}
			bl, al = clip(bl, col-2), clip(al, col-2)
			if h.equal {
				fmt.Fprintf(&sb, "%s%s%s\n", faint.Render(pad("  "+bl, col)), sep, faint.Render("  "+al))
				continue
			}
			l, r := charSpans(bl, al)
			left := pad("  "+bl, col)
			if i < len(h.del) {
				left = delLine.Render("- ") + l + strings.Repeat(" ", max(col-2-len([]rune(bl)), 0))
			}
			right := ""
			if i < len(h.add) {
				right = addLine.Render("+ ") + r
			}
			sb.WriteString(left + sep + right + "\n")
		}
	}
	return sb.String()
}

type hunk struct {
	equal    bool
	del, add []string
}

// hunks groups a line diff into runs of equal lines and runs of changes.
func hunks(before, after string) []hunk {
	d := dmp.New()
	a, b, lines := d.DiffLinesToChars(before, after)
	diffs := d.DiffCharsToLines(d.DiffMain(a, b, false), lines)

	var out []hunk
	cur := func() *hunk {
		if len(out) == 0 || out[len(out)-1].equal {
			out = append(out, hunk{})
		}
		return &out[len(out)-1]
	}
	for _, df := range diffs {
		ls := splitLines(df.Text)
		switch df.Type {
		case dmp.DiffEqual:
			out = append(out, hunk{equal: true, del: ls, add: ls})
		case dmp.DiffDelete:
			h := cur()
			h.del = append(h.del, ls...)
		case dmp.DiffInsert:
			h := cur()
			h.add = append(h.add, ls...)
		}
	}
	return out
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// charSpans highlights the characters that differ between a line pair.
func charSpans(bl, al string) (string, string) {
	d := dmp.New()
	diffs := d.DiffMain(bl, al, false)
	d.DiffCleanupSemantic(diffs)
	var l, r strings.Builder
	for _, df := range diffs {
		switch df.Type {
		case dmp.DiffDelete:
			l.WriteString(delChar.Render(df.Text))
		case dmp.DiffInsert:
			r.WriteString(addChar.Render(df.Text))
		case dmp.DiffEqual:
			l.WriteString(delLine.Render(df.Text))
			r.WriteString(addLine.Render(df.Text))
		}
	}
	return l.String(), r.String()
}

func clip(s string, width int) string {
	runes := []rune(s)
	if width <= 0 {
		return ""
	}
	if len(runes) > width {
		return string(runes[:width])
	}
	return s
}

func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
