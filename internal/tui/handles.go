package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"htmlpad/internal/editor"
	"htmlpad/internal/editor/state"
)

// callMsg runs a function on the program loop.
type callMsg func()

// loop forwards work from other goroutines onto the program loop.
type loop struct {
	mu     sync.Mutex
	send   func(tea.Msg)
	queued []tea.Msg
}

// attach sets the sender and flushes anything posted before it existed.
func (l *loop) attach(send func(tea.Msg)) {
	l.mu.Lock()
	l.send = send
	queued := l.queued
	l.queued = nil
	l.mu.Unlock()
	for _, msg := range queued {
		send(msg)
	}
}

func (l *loop) post(msg tea.Msg) {
	l.mu.Lock()
	send := l.send
	if send == nil {
		l.queued = append(l.queued, msg)
	}
	l.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

type scheduler struct{ loop *loop }

func (s scheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, func() { s.loop.post(callMsg(f)) })
}

type bannerView struct{ m *Model }

func (b bannerView) ShowBanner(text string) { b.m.banner = text }
func (b bannerView) HideBanner()            { b.m.banner = "" }

type panels struct{ m *Model }

func (p panels) ContainerWidth() int { return p.m.containerWidth() }
func (p panels) RightWidth() int     { return p.m.rightW }
func (p panels) SetShares(l state.PanelLayout) {
	p.m.layout = l
	p.m.resize()
}

type pendingConfirm struct {
	prompt string
	answer func(bool)
}

type confirmer struct{ m *Model }

func (c confirmer) Confirm(prompt string, answer func(bool)) {
	c.m.confirm = &pendingConfirm{prompt: prompt, answer: answer}
}

// trackedSurface sits directly on the preview pane and remembers the source
// it last displayed, whatever happens to the other surfaces of a load.
type trackedSurface struct {
	inner editor.Surface
	m     *Model
}

func (t trackedSurface) Load(content string) (editor.Handle, error) {
	h, err := t.inner.Load(content)
	if err == nil {
		t.m.rendered = content
	}
	return h, err
}

func (t trackedSurface) SubscribeError(h editor.Handle, fn func(editor.ScriptError)) {
	t.inner.SubscribeError(h, fn)
}

// loopSurface moves error callbacks onto the program loop.
type loopSurface struct {
	inner editor.Surface
	l     *loop
}

func (s loopSurface) Load(content string) (editor.Handle, error) { return s.inner.Load(content) }

func (s loopSurface) SubscribeError(h editor.Handle, fn func(editor.ScriptError)) {
	l := s.l
	s.inner.SubscribeError(h, func(e editor.ScriptError) {
		l.post(callMsg(func() { fn(e) }))
	})
}
