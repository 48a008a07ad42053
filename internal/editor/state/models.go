package state

// EditorState is the text buffer owned by one editing session.
type EditorState struct {
	Source string
}

// PanelLayout is the derived split between the editor (left) and preview
// (right) panels, in percent of the container width.
type PanelLayout struct {
	LeftShare float64
}

// RightShare is the complement of LeftShare.
func (l PanelLayout) RightShare() float64 { return 100 - l.LeftShare }

// DefaultLayout splits the container evenly.
func DefaultLayout() PanelLayout { return PanelLayout{LeftShare: 50} }

// RenderResult is produced once per render request and overwritten by the
// next one.
type RenderResult struct {
	Succeeded bool
	ErrorText string
}

// DragState is the resizer's state machine position.
type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (d DragState) String() string {
	if d == Dragging {
		return "dragging"
	}
	return "idle"
}

// Caret is a selection range in runes. Start == End means no selection.
type Caret struct {
	Start int
	End   int
}
