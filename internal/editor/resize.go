package editor

import "htmlpad/internal/editor/state"

// DefaultMinPanel is the smallest panel width in pixels.
const DefaultMinPanel = 100

// Resizer drags the split between the two panels. Pointer-down on the
// handle starts a drag and subscribes the document's move and up events;
// pointer-up anywhere ends it and removes both routes.
type Resizer struct {
	panels Panels
	table  *Table
	min    int

	drag       state.DragState
	startX     int
	startRight int
	layout     state.PanelLayout
}

// NewResizer registers the handle's pointer-down route on table.
func NewResizer(panels Panels, table *Table, min int) *Resizer {
	if min <= 0 {
		min = DefaultMinPanel
	}
	r := &Resizer{panels: panels, table: table, min: min, layout: state.DefaultLayout()}
	table.On(ControlHandle, EventPointerDown, r.begin)
	return r
}

func (r *Resizer) begin(ev *Event) {
	r.drag = state.Dragging
	r.startX = ev.X
	r.startRight = r.panels.RightWidth()
	r.table.On(ControlDocument, EventPointerMove, r.move)
	r.table.On(ControlDocument, EventPointerUp, r.end)
	ev.PreventDefault()
}

func (r *Resizer) move(ev *Event) {
	if r.drag != state.Dragging {
		return
	}
	r.layout = state.ComputeShares(r.startX, r.startRight, ev.X, r.panels.ContainerWidth(), r.min)
	r.panels.SetShares(r.layout)
}

func (r *Resizer) end(*Event) {
	r.drag = state.Idle
	r.table.Off(ControlDocument, EventPointerMove)
	r.table.Off(ControlDocument, EventPointerUp)
}

// State returns Idle or Dragging.
func (r *Resizer) State() state.DragState { return r.drag }

// Layout returns the shares applied by the last move.
func (r *Resizer) Layout() state.PanelLayout { return r.layout }

// SetMin changes the minimum panel width for later moves.
func (r *Resizer) SetMin(min int) {
	if min > 0 {
		r.min = min
	}
}
