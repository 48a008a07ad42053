package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"htmlpad/internal/editor"
)

type fakeBridge struct {
	loads   []string
	next    editor.Handle
	sub     func(editor.ScriptError)
	clients int
	notify  func(int)
	err     error
}

func (b *fakeBridge) Load(content string) (editor.Handle, error) {
	if b.err != nil {
		return 0, b.err
	}
	b.loads = append(b.loads, content)
	b.next++
	b.sub = nil
	return b.next, nil
}

func (b *fakeBridge) SubscribeError(h editor.Handle, fn func(editor.ScriptError)) {
	if h == b.next {
		b.sub = fn
	}
}

func (b *fakeBridge) Clients() int                  { return b.clients }
func (b *fakeBridge) OnClientsChanged(fn func(int)) { b.notify = fn }

type failingPoster struct{}

func (failingPoster) PostPreview(context.Context, string) (string, error) {
	return "", errors.New("server down")
}

// sink collects messages posted to the loop, possibly from timer goroutines.
type sink struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *sink) send(msg tea.Msg) {
	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	s.mu.Unlock()
}

func (s *sink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

func (s *sink) at(i int) tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msgs[i]
}

func newModel(t *testing.T, opts Options) (*Model, *sink) {
	t.Helper()
	if opts.Session.Example == "" {
		opts.Session.Example = "<title>Demo</title><h1>Hello</h1>"
	}
	if opts.Session.MinPanel == 0 {
		opts.Session.MinPanel = 10
	}
	m, err := New(opts)
	require.NoError(t, err)
	sent := &sink{}
	m.loop.attach(sent.send)
	m.Update(tea.WindowSizeMsg{Width: 101, Height: 30})
	return m, sent
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestStartRendersExample(t *testing.T) {
	m, _ := newModel(t, Options{})
	assert.Equal(t, "<title>Demo</title><h1>Hello</h1>", m.input.Value())
	assert.Equal(t, m.input.Value(), m.rendered)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Demo")
	assert.Contains(t, view, "Hello")
	assert.Contains(t, view, "Run")
}

func TestTypingDoesNotRenderUntilRun(t *testing.T) {
	m, _ := newModel(t, Options{Session: editor.Options{Example: "x"}})
	m.input.SetCaret(1)
	typeText(m, "yz")
	assert.Equal(t, "xyz", m.input.Value())
	assert.Equal(t, "x", m.rendered)
	assert.Equal(t, "xyz", m.session.Source())

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, "xyz", m.rendered)
}

func TestEnterAndGutterLabels(t *testing.T) {
	m, _ := newModel(t, Options{Session: editor.Options{Example: "a"}})
	m.input.SetCaret(1)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeText(m, "b")
	assert.Equal(t, "a\nb", m.input.Value())
	assert.Equal(t, []int{1, 2}, m.gutter.Labels())
}

func TestTabInsertsIndentUnit(t *testing.T) {
	m, _ := newModel(t, Options{Session: editor.Options{Example: "ab", Indent: "  "}})
	m.input.SetCaret(1)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "a  b", m.input.Value())
	assert.Equal(t, 3, m.input.Caret().Start)
}

func TestClearAsksFirst(t *testing.T) {
	m, _ := newModel(t, Options{})

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	require.NotNil(t, m.confirm)
	assert.Contains(t, ansi.Strip(m.View()), editor.ClearPrompt)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.Nil(t, m.confirm)
	assert.NotEmpty(t, m.input.Value())

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	assert.Empty(t, m.input.Value())
	assert.Empty(t, m.rendered)
}

func TestExampleRestoresSample(t *testing.T) {
	m, _ := newModel(t, Options{})
	m.input.SetValue("junk")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	assert.Equal(t, "<title>Demo</title><h1>Hello</h1>", m.input.Value())
}

func TestDragResizesPanels(t *testing.T) {
	m, _ := newModel(t, Options{})
	require.Equal(t, 50, m.leftW)

	m.Update(tea.MouseMsg{X: 50, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.True(t, m.dragging)
	m.Update(tea.MouseMsg{X: 70, Y: 5, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 70, Y: 5, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	assert.False(t, m.dragging)
	assert.InDelta(t, 70.0, m.layout.LeftShare, 0.01)
	assert.Equal(t, 70, m.leftW)
	assert.Equal(t, 30, m.rightW)

	// Motion after release no longer moves the split.
	m.Update(tea.MouseMsg{X: 20, Y: 5, Action: tea.MouseActionMotion})
	assert.Equal(t, 70, m.leftW)
}

func TestKeyboardNudgeRespectsMinimum(t *testing.T) {
	m, _ := newModel(t, Options{})
	for range 40 {
		m.Update(tea.KeyMsg{Type: tea.KeyRight, Alt: true})
	}
	assert.Equal(t, 10, m.rightW)
}

func TestToolbarClickRuns(t *testing.T) {
	m, _ := newModel(t, Options{Session: editor.Options{Example: "a"}})
	m.input.SetValue("changed")
	m.Update(tea.MouseMsg{X: 1, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, "changed", m.rendered)
}

func TestBridgeErrorShowsBannerThenHides(t *testing.T) {
	b := &fakeBridge{clients: 2}
	m, sent := newModel(t, Options{
		Bridge:  b,
		Session: editor.Options{BannerTTL: 10 * time.Millisecond},
	})
	require.Len(t, b.loads, 1)
	require.NotNil(t, b.sub)

	b.sub(editor.ScriptError{Message: "boom", Line: 3})
	require.Equal(t, 1, sent.len())
	assert.Empty(t, m.banner, "callbacks run on the program loop")

	m.Update(sent.at(0))
	assert.Equal(t, "JavaScript error: boom at line 3", m.banner)
	assert.Contains(t, ansi.Strip(m.View()), "Bridge 2")

	require.Eventually(t, func() bool { return sent.len() == 2 }, time.Second, 5*time.Millisecond)
	m.Update(sent.at(1))
	assert.Empty(t, m.banner)
}

func TestBridgeFailureKeepsPaneAndDiffInStep(t *testing.T) {
	b := &fakeBridge{}
	m, _ := newModel(t, Options{Session: editor.Options{Example: "<p>one</p>"}, Bridge: b})
	b.err = errors.New("bridge closed")

	m.input.SetValue("<p>two</p>")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Contains(t, m.banner, "bridge closed")
	assert.Equal(t, "<p>two</p>", m.rendered)
	assert.Contains(t, m.preview.Content(), "two")
	assert.Contains(t, ansi.Strip(m.View()), "two")
}

func TestClientsMsgUpdatesCount(t *testing.T) {
	m, _ := newModel(t, Options{Bridge: &fakeBridge{}})
	m.Update(clientsMsg(3))
	assert.Equal(t, 3, m.clients)
}

func TestReloadAppliesOptions(t *testing.T) {
	ch := make(chan editor.Options, 1)
	m, _ := newModel(t, Options{Reload: ch, Session: editor.Options{Example: "ab"}})
	ch <- editor.Options{Indent: "----"}

	msg := m.Init()()
	_, cmd := m.Update(msg)
	assert.NotNil(t, cmd)
	assert.Equal(t, "----", m.session.Indent())
	assert.Equal(t, "Config reloaded", m.notice)
}

func TestLoopQueuesUntilAttached(t *testing.T) {
	l := &loop{}
	l.post(clientsMsg(1))
	l.post(clientsMsg(2))
	var got []tea.Msg
	l.attach(func(msg tea.Msg) { got = append(got, msg) })
	l.post(clientsMsg(3))
	assert.Equal(t, []tea.Msg{clientsMsg(1), clientsMsg(2), clientsMsg(3)}, got)
}

func TestSetupFailureShowsBanner(t *testing.T) {
	m, _ := newModel(t, Options{Relay: failingPoster{}, RelayTimeout: time.Second})
	assert.Contains(t, m.banner, "Error rendering HTML: ")
	assert.Contains(t, m.banner, "down")
}
