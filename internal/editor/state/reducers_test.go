package state

import (
	"math"
	"strings"
	"testing"
)

func TestLineLabelsExample(t *testing.T) {
	got := LineLabels("line1\nline2\nline3")
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestLineLabelsCountAndOrder(t *testing.T) {
	inputs := []string{"", "\n", "a", "a\n", "\n\n\n", "<p>\r\n</p>", "héllo\nwörld"}
	for _, in := range inputs {
		labels := LineLabels(in)
		if len(labels) != strings.Count(in, "\n")+1 {
			t.Fatalf("%q: expected %d labels, got %d", in, strings.Count(in, "\n")+1, len(labels))
		}
		for i, l := range labels {
			if l != i+1 {
				t.Fatalf("%q: label %d is %d", in, i, l)
			}
		}
	}
}

func TestComputeSharesSumAndBounds(t *testing.T) {
	for _, w := range []int{200, 201, 640, 1280, 1920} {
		for _, delta := range []int{-5000, -300, -1, 0, 1, 57, 300, 5000} {
			l := ComputeShares(1000, w/2, 1000-delta, w, 100)
			if math.Abs(l.LeftShare+l.RightShare()-100) > 1e-9 {
				t.Fatalf("w=%d delta=%d: shares do not sum to 100", w, delta)
			}
			px := l.RightShare() / 100 * float64(w)
			if px < 100-1e-6 || px > float64(w-100)+1e-6 {
				t.Fatalf("w=%d delta=%d: right width %.2f out of [100,%d]", w, delta, px, w-100)
			}
		}
	}
}

func TestComputeSharesTracksPointer(t *testing.T) {
	// dragging the handle 100px to the left grows the right panel by 100px
	l := ComputeShares(500, 400, 400, 1000, 100)
	if math.Abs(l.RightShare()-50) > 1e-9 {
		t.Fatalf("expected right share 50, got %v", l.RightShare())
	}
}

func TestComputeSharesNarrowContainer(t *testing.T) {
	l := ComputeShares(10, 80, 0, 150, 100)
	if l.LeftShare != 50 {
		t.Fatalf("expected midpoint collapse, got %v", l.LeftShare)
	}
	if ComputeShares(0, 0, 0, 0, 100).LeftShare != 50 {
		t.Fatalf("expected default layout for empty container")
	}
}

func TestWidthsAddUp(t *testing.T) {
	for _, share := range []float64{0, 12.5, 33.3, 50, 99.9, 100} {
		left, right := Widths(PanelLayout{LeftShare: share}, 97)
		if left+right != 97 {
			t.Fatalf("share %v: %d+%d != 97", share, left, right)
		}
	}
}

func TestInsertIndentAtCaret(t *testing.T) {
	text, caret := InsertIndent("abcdef", Caret{Start: 3, End: 3}, "\t")
	if text != "abc\tdef" || caret != 4 {
		t.Fatalf("expected abc\\tdef caret 4, got %q caret %d", text, caret)
	}
}

func TestInsertIndentReplacesSelection(t *testing.T) {
	text, caret := InsertIndent("abcdef", Caret{Start: 4, End: 1}, "    ")
	if text != "a    ef" || caret != 5 {
		t.Fatalf("got %q caret %d", text, caret)
	}
}

func TestInsertIndentClampsAndCountsRunes(t *testing.T) {
	text, caret := InsertIndent("héé", Caret{Start: 9, End: 12}, "\t")
	if text != "héé\t" || caret != 4 {
		t.Fatalf("got %q caret %d", text, caret)
	}
}

func TestLineCol(t *testing.T) {
	line, col := LineCol("ab\ncde\nf", 5)
	if line != 1 || col != 2 {
		t.Fatalf("expected 1:2, got %d:%d", line, col)
	}
}
