package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"htmlpad/internal/editor/state"
)

func newSession(t *testing.T, r *rig, opts Options) *Session {
	t.Helper()
	s, err := NewSession(r.handles(), opts)
	require.NoError(t, err)
	return s
}

func TestNewSessionRequiresHandles(t *testing.T) {
	r := newRig()
	h := r.handles()
	h.Confirm = nil
	_, err := NewSession(h, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Confirm")
}

func TestStartLoadsExampleAndRendersOnce(t *testing.T) {
	r := newRig()
	s := newSession(t, r, Options{})
	s.Start()

	require.Len(t, r.surface.loads, 1)
	assert.Equal(t, ExampleMarkup(), r.surface.loads[0])
	assert.Equal(t, ExampleMarkup(), r.input.text)
	assert.Equal(t, state.LineLabels(ExampleMarkup()), r.gutter.labels)
	assert.True(t, s.LastResult().Succeeded)
}

func TestRunAndRefreshShareRender(t *testing.T) {
	r := newRig()
	s := newSession(t, r, Options{})
	r.input.text = "<b>hi</b>"

	assert.True(t, s.Dispatch(&Event{Control: ControlRun, Kind: EventClick}))
	assert.True(t, s.Dispatch(&Event{Control: ControlRefresh, Kind: EventClick}))
	assert.Equal(t, []string{"<b>hi</b>", "<b>hi</b>"}, r.surface.loads)
	assert.Equal(t, "<b>hi</b>", s.Source())
}

func TestInputEventUpdatesGutter(t *testing.T) {
	r := newRig()
	s := newSession(t, r, Options{})
	r.input.text = "line1\nline2\nline3"
	s.Dispatch(&Event{Control: ControlInput, Kind: EventInput})
	assert.Equal(t, []int{1, 2, 3}, r.gutter.labels)
}

func TestScrollSyncsGutter(t *testing.T) {
	r := newRig()
	s := newSession(t, r, Options{})
	s.Dispatch(&Event{Control: ControlInput, Kind: EventScroll, ScrollTop: 42})
	assert.Equal(t, 42, r.gutter.top)
}

func TestTabInsertsIndentAtCaret(t *testing.T) {
	r := newRig()
	s := newSession(t, r, Options{})
	r.input.text = "abcdef"
	r.input.selectRange(3, 3)

	ev := &Event{Control: ControlInput, Kind: EventKeyDown, Key: KeyIndent}
	s.Dispatch(ev)

	assert.True(t, ev.DefaultPrevented)
	assert.Equal(t, "abc\tdef", r.input.text)
	assert.Equal(t, state.Caret{Start: 4, End: 4}, r.input.caret)
	assert.Empty(t, r.surface.loads)
}

func TestTabUsesConfiguredIndent(t *testing.T) {
	r := newRig()
	s := newSession(t, r, Options{Indent: "  "})
	r.input.text = "ab"
	r.input.selectRange(0, 2)
	s.Dispatch(&Event{Control: ControlInput, Kind: EventKeyDown, Key: KeyIndent})
	assert.Equal(t, "  ", r.input.text)
	assert.Equal(t, 2, r.input.caret.Start)
}

func TestCtrlEnterRendersWithoutNewline(t *testing.T) {
	r := newRig()
	s := newSession(t, r, Options{})
	r.input.text = "<p>x</p>"
	ev := &Event{Control: ControlInput, Kind: EventKeyDown, Key: KeyEnter, Ctrl: true}
	s.Dispatch(ev)
	assert.True(t, ev.DefaultPrevented)
	assert.Equal(t, []string{"<p>x</p>"}, r.surface.loads)
	assert.Equal(t, "<p>x</p>", r.input.text)
}

func TestPlainEnterIsNotConsumed(t *testing.T) {
	r := newRig()
	s := newSession(t, r, Options{})
	ev := &Event{Control: ControlInput, Kind: EventKeyDown, Key: KeyEnter}
	s.Dispatch(ev)
	assert.False(t, ev.DefaultPrevented)
	assert.Empty(t, r.surface.loads)
}

func TestClearAskedAndDeclined(t *testing.T) {
	r := newRig()
	s := newSession(t, r, Options{})
	r.input.text = "keep me"
	s.Dispatch(&Event{Control: ControlClear, Kind: EventClick})
	assert.Equal(t, []string{ClearPrompt}, r.confirm.prompts)
	assert.Equal(t, "keep me", r.input.text)
	assert.Empty(t, r.surface.loads)
}

func TestClearConfirmed(t *testing.T) {
	r := newRig()
	r.confirm.answer = true
	s := newSession(t, r, Options{})
	r.input.text = "a\nb"
	s.Dispatch(&Event{Control: ControlClear, Kind: EventClick})
	assert.Equal(t, "", r.input.text)
	assert.Equal(t, []int{1}, r.gutter.labels)
	assert.Equal(t, []string{""}, r.surface.loads)
}

func TestExampleReplacesContent(t *testing.T) {
	r := newRig()
	s := newSession(t, r, Options{Example: "<h1>mine</h1>"})
	r.input.text = "old"
	s.Dispatch(&Event{Control: ControlExample, Kind: EventClick})
	assert.Equal(t, "<h1>mine</h1>", r.input.text)
	assert.Equal(t, []string{"<h1>mine</h1>"}, r.surface.loads)
}

func TestApplyChangesIndent(t *testing.T) {
	r := newRig()
	s := newSession(t, r, Options{})
	s.Apply(Options{Indent: "    "})
	assert.Equal(t, "    ", s.Indent())
}
