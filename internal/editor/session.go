package editor

import (
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"htmlpad/internal/editor/state"
)

//go:embed example.html
var exampleMarkup string

// ExampleMarkup is the fixed sample document loaded by the Example control.
func ExampleMarkup() string { return exampleMarkup }

const (
	// DefaultIndent is the unit inserted by the indent key.
	DefaultIndent = "\t"

	// ClearPrompt is asked before the Clear control empties the input.
	ClearPrompt = "Are you sure you want to clear the editor? All your code will be lost."

	// KeyIndent and KeyEnter are the key names the session reacts to.
	KeyIndent = "Tab"
	KeyEnter  = "Enter"
)

// Options tunes a session. Zero values fall back to defaults.
type Options struct {
	Indent    string
	BannerTTL time.Duration
	MinPanel  int
	Example   string
	Log       *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Indent == "" {
		o.Indent = DefaultIndent
	}
	if o.BannerTTL <= 0 {
		o.BannerTTL = DefaultBannerTTL
	}
	if o.MinPanel <= 0 {
		o.MinPanel = DefaultMinPanel
	}
	if o.Example == "" {
		o.Example = exampleMarkup
	}
	if o.Log == nil {
		o.Log = slog.New(slog.DiscardHandler)
	}
	return o
}

// Session is one editing session: the source buffer plus the components
// that react to its controls. All methods must run on the UI loop.
type Session struct {
	h     Handles
	opts  Options
	table *Table
	log   *slog.Logger

	state    state.EditorState
	banner   *Banner
	renderer *Renderer
	resizer  *Resizer
}

// NewSession validates the handles, builds the components and registers
// every route on a fresh dispatch table.
func NewSession(h Handles, opts Options) (*Session, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	s := &Session{h: h, opts: opts, table: NewTable(), log: opts.Log}
	s.banner = NewBanner(h.Banner, h.Clock, opts.BannerTTL)
	s.renderer = NewRenderer(h.Surface, s.banner, opts.Log)
	s.resizer = NewResizer(h.Panels, s.table, opts.MinPanel)

	s.table.On(ControlInput, EventKeyDown, s.keyDown)
	s.table.On(ControlInput, EventInput, func(*Event) { s.syncSource() })
	s.table.On(ControlInput, EventScroll, func(ev *Event) { s.h.Gutter.SetScrollTop(ev.ScrollTop) })
	s.table.On(ControlRun, EventClick, func(*Event) { s.Render() })
	s.table.On(ControlRefresh, EventClick, func(*Event) { s.Render() })
	s.table.On(ControlExample, EventClick, func(*Event) { s.LoadExample() })
	s.table.On(ControlClear, EventClick, func(*Event) { s.Clear() })
	return s, nil
}

func (h Handles) validate() error {
	missing := ""
	switch {
	case h.Input == nil:
		missing = "Input"
	case h.Gutter == nil:
		missing = "Gutter"
	case h.Surface == nil:
		missing = "Surface"
	case h.Banner == nil:
		missing = "Banner"
	case h.Panels == nil:
		missing = "Panels"
	case h.Confirm == nil:
		missing = "Confirm"
	case h.Clock == nil:
		missing = "Clock"
	}
	if missing != "" {
		return fmt.Errorf("editor: missing %s handle", missing)
	}
	return nil
}

// Start shows the initial gutter, loads the example and renders it.
func (s *Session) Start() {
	s.syncSource()
	s.LoadExample()
}

// Dispatch feeds one event through the session's table.
func (s *Session) Dispatch(ev *Event) bool { return s.table.Dispatch(ev) }

// Table exposes the dispatch table.
func (s *Session) Table() *Table { return s.table }

// Render pushes the current input text to the surface.
func (s *Session) Render() state.RenderResult {
	s.state.Source = s.h.Input.Value()
	return s.renderer.Render(s.state.Source)
}

// LoadExample replaces the input with the example document and renders it.
func (s *Session) LoadExample() {
	s.h.Input.SetValue(s.opts.Example)
	s.syncSource()
	s.Render()
}

// Clear empties the input after the user confirms.
func (s *Session) Clear() {
	s.h.Confirm.Confirm(ClearPrompt, func(ok bool) {
		if !ok {
			return
		}
		s.h.Input.SetValue("")
		s.syncSource()
		s.Render()
	})
}

// Apply updates tunables on a live session.
func (s *Session) Apply(opts Options) {
	if opts.Indent != "" {
		s.opts.Indent = opts.Indent
	}
	if opts.BannerTTL > 0 {
		s.opts.BannerTTL = opts.BannerTTL
		s.banner.SetTTL(opts.BannerTTL)
	}
	if opts.MinPanel > 0 {
		s.opts.MinPanel = opts.MinPanel
		s.resizer.SetMin(opts.MinPanel)
	}
	if opts.Example != "" {
		s.opts.Example = opts.Example
	}
}

// Source returns the buffer as of the last input, render or load.
func (s *Session) Source() string { return s.state.Source }

// LastResult returns the latest render outcome.
func (s *Session) LastResult() state.RenderResult { return s.renderer.Last() }

// Banner exposes the error banner.
func (s *Session) Banner() *Banner { return s.banner }

// Resizer exposes the panel resizer.
func (s *Session) Resizer() *Resizer { return s.resizer }

// Indent returns the configured indent unit.
func (s *Session) Indent() string { return s.opts.Indent }

func (s *Session) syncSource() {
	s.state.Source = s.h.Input.Value()
	s.h.Gutter.SetLabels(state.LineLabels(s.state.Source))
}

func (s *Session) keyDown(ev *Event) {
	switch {
	case ev.Ctrl && ev.Key == KeyEnter:
		ev.PreventDefault()
		s.Render()
	case ev.Key == KeyIndent && !ev.Ctrl && !ev.Alt && !ev.Shift:
		ev.PreventDefault()
		text, caret := state.InsertIndent(s.h.Input.Value(), s.h.Input.Caret(), s.opts.Indent)
		s.h.Input.SetValue(text)
		s.h.Input.SetCaret(caret)
		s.syncSource()
	}
}
