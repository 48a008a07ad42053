package editor

import "sort"

// Control names an interactive surface of the editor.
type Control string

const (
	ControlInput   Control = "input"
	ControlRun     Control = "run"
	ControlRefresh Control = "refresh"
	ControlExample Control = "example"
	ControlClear   Control = "clear"
	ControlHandle  Control = "resize-handle"
	// ControlDocument receives pointer events from anywhere in the window.
	ControlDocument Control = "document"
)

// EventKind is the type of input event delivered to a control.
type EventKind string

const (
	EventClick       EventKind = "click"
	EventKeyDown     EventKind = "keydown"
	EventInput       EventKind = "input"
	EventScroll      EventKind = "scroll"
	EventPointerDown EventKind = "pointerdown"
	EventPointerMove EventKind = "pointermove"
	EventPointerUp   EventKind = "pointerup"
)

// Event is a synthetic UI event. Front ends translate their native events
// into this shape; tests build them directly.
type Event struct {
	Control Control
	Kind    EventKind

	// Key events.
	Key   string
	Ctrl  bool
	Alt   bool
	Shift bool

	// Pointer events.
	X int

	// Scroll events.
	ScrollTop int

	// Set by handlers that consume the event's default behavior.
	DefaultPrevented bool
}

// PreventDefault marks the event as consumed.
func (e *Event) PreventDefault() { e.DefaultPrevented = true }

// Handler reacts to one event.
type Handler func(ev *Event)

type route struct {
	control Control
	kind    EventKind
}

// Table maps (control, event kind) pairs to handlers. It replaces ad-hoc
// listener registration: components register and unregister routes and the
// front end feeds every event through Dispatch.
type Table struct {
	routes map[route]Handler
}

// NewTable returns an empty dispatch table.
func NewTable() *Table {
	return &Table{routes: map[route]Handler{}}
}

// On registers h for (c, k), replacing any previous handler.
func (t *Table) On(c Control, k EventKind, h Handler) {
	t.routes[route{c, k}] = h
}

// Off removes the handler for (c, k).
func (t *Table) Off(c Control, k EventKind) {
	delete(t.routes, route{c, k})
}

// Has reports whether a handler is registered for (c, k).
func (t *Table) Has(c Control, k EventKind) bool {
	_, ok := t.routes[route{c, k}]
	return ok
}

// Dispatch runs the handler registered for the event's control and kind.
// It reports whether a handler ran.
func (t *Table) Dispatch(ev *Event) bool {
	h, ok := t.routes[route{ev.Control, ev.Kind}]
	if !ok {
		return false
	}
	h(ev)
	return true
}

// Routes lists registered routes as "control/kind", sorted.
func (t *Table) Routes() []string {
	out := make([]string, 0, len(t.routes))
	for r := range t.routes {
		out = append(out, string(r.control)+"/"+string(r.kind))
	}
	sort.Strings(out)
	return out
}
