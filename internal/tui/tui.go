// Package tui is the terminal front end: the editor session drawn with
// bubbletea, plus a request log viewer for the server.
package tui

import (
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"htmlpad/internal/editor"
	"htmlpad/internal/editor/state"
	"htmlpad/internal/surface"
	"htmlpad/internal/surface/relay"
	"htmlpad/internal/surface/text"
	"htmlpad/internal/tui/util"
	"htmlpad/internal/tui/views/toolbar"
	"htmlpad/internal/tui/widgets/chips"
	"htmlpad/internal/tui/widgets/diff"
	wedit "htmlpad/internal/tui/widgets/editor"
	"htmlpad/internal/tui/widgets/gutter"
	"htmlpad/internal/tui/widgets/helpoverlay"
	"htmlpad/internal/tui/widgets/statusbar"
)

// Bridge is a browser preview surface that reports attached tabs.
type Bridge interface {
	editor.Surface
	Clients() int
	OnClientsChanged(fn func(clients int))
}

// Options configures the terminal editor.
type Options struct {
	Session editor.Options

	// Relay, when set, sends every render through the server first.
	Relay        relay.Poster
	RelayTimeout time.Duration

	// Bridge, when set, receives every render too.
	Bridge    Bridge
	BridgeURL string

	// Reload delivers new tunables, e.g. from a watched config file.
	Reload <-chan editor.Options

	NoColor bool
	Log     *slog.Logger
}

const (
	focusEditor  = "editor"
	focusPreview = "preview"

	wheelStep = 3
	nudge     = 2
)

var (
	handleStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "250", Dark: "238"})
	dragStyle    = lipgloss.NewStyle().Foreground(util.DefaultPalette().Primary)
	bannerStyle  = lipgloss.NewStyle().Foreground(util.DefaultPalette().OnColor).Background(util.DefaultPalette().Danger).Bold(true)
	confirmStyle = lipgloss.NewStyle().Foreground(util.DefaultPalette().Warning).Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// Model is the terminal editor.
type Model struct {
	opts    Options
	log     *slog.Logger
	loop    *loop
	session *editor.Session

	input   *wedit.Editor
	gutter  *gutter.Gutter
	preview *text.Surface
	view    viewport.Model

	keys     keyMap
	help     helpoverlay.HelpOverlay
	bar      statusbar.StatusBar
	diffView diff.DiffView

	width, height int
	layout        state.PanelLayout
	leftW, rightW int
	shown         string // preview text currently in the viewport

	focus    string
	banner   string
	confirm  *pendingConfirm
	rendered string
	notice   string
	clients  int
	showHelp bool
	showDiff bool
	diffMode diff.Mode
	dragging bool
}

// New builds the model and starts the session: the example is loaded and
// rendered once.
func New(opts Options) (*Model, error) {
	if opts.Log == nil {
		opts.Log = slog.New(slog.DiscardHandler)
	}
	if opts.Session.Log == nil {
		opts.Session.Log = opts.Log
	}
	m := &Model{
		opts:     opts,
		log:      opts.Log,
		loop:     &loop{},
		input:    wedit.NewEditor(),
		gutter:   gutter.New(),
		preview:  text.New(),
		view:     viewport.New(0, 0),
		keys:     defaultKeys(),
		help:     helpoverlay.NewHelpOverlay(),
		bar:      statusbar.NewStatusBar(),
		diffView: diff.NewDiffView(),
		layout:   state.DefaultLayout(),
		focus:    focusEditor,
	}

	var target editor.Surface = trackedSurface{inner: m.preview, m: m}
	if opts.Relay != nil {
		target = relay.New(target, opts.Relay, opts.RelayTimeout)
	}
	if opts.Bridge != nil {
		target = surface.NewFanout(target, opts.Bridge)
		m.clients = opts.Bridge.Clients()
	}

	s, err := editor.NewSession(editor.Handles{
		Input:   m.input,
		Gutter:  m.gutter,
		Surface: loopSurface{inner: target, l: m.loop},
		Banner:  bannerView{m},
		Panels:  panels{m},
		Confirm: confirmer{m},
		Clock:   scheduler{m.loop},
	}, opts.Session)
	if err != nil {
		return nil, err
	}
	m.session = s
	s.Start()
	m.input.SetCaret(0)
	m.syncPreview()
	return m, nil
}

// Run starts the program and blocks until the user quits.
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	m.loop.attach(p.Send)
	if opts.Bridge != nil {
		opts.Bridge.OnClientsChanged(func(n int) { p.Send(clientsMsg(n)) })
	}
	_, err = p.Run()
	return err
}

type clientsMsg int

type reloadMsg editor.Options

func waitReload(ch <-chan editor.Options) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		o, ok := <-ch
		if !ok {
			return nil
		}
		return reloadMsg(o)
	}
}

func (m *Model) Init() tea.Cmd { return waitReload(m.opts.Reload) }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = v.Width, v.Height
		m.help.SetWidth(v.Width)
		m.resize()
	case tea.KeyMsg:
		cmd = m.handleKey(v)
	case tea.MouseMsg:
		m.handleMouse(v)
	case callMsg:
		v()
	case clientsMsg:
		m.clients = int(v)
	case reloadMsg:
		m.session.Apply(editor.Options(v))
		m.notice = "Config reloaded"
		m.log.Info("editor options reloaded")
		cmd = waitReload(m.opts.Reload)
	}
	m.syncPreview()
	return m, cmd
}

func (m *Model) handleKey(k tea.KeyMsg) tea.Cmd {
	if key.Matches(k, m.keys.Quit) {
		return tea.Quit
	}
	if m.confirm != nil {
		switch strings.ToLower(k.String()) {
		case "y":
			m.answer(true)
		case "n", "esc":
			m.answer(false)
		}
		return nil
	}
	if m.showHelp {
		if key.Matches(k, m.keys.Help) || k.String() == "esc" {
			m.showHelp = false
		}
		return nil
	}
	if m.showDiff {
		switch {
		case key.Matches(k, m.keys.Diff), k.String() == "esc":
			m.showDiff = false
		case k.String() == "v":
			m.diffMode = 1 - m.diffMode
		}
		return nil
	}
	m.notice = ""

	switch {
	case key.Matches(k, m.keys.Run):
		m.keyDown(editor.Event{Key: editor.KeyEnter, Ctrl: true})
		return nil
	case key.Matches(k, m.keys.Refresh):
		m.click(editor.ControlRefresh)
		return nil
	case key.Matches(k, m.keys.Example):
		m.click(editor.ControlExample)
		return nil
	case key.Matches(k, m.keys.Clear):
		m.click(editor.ControlClear)
		return nil
	case key.Matches(k, m.keys.Help):
		m.showHelp = true
		return nil
	case key.Matches(k, m.keys.Diff):
		m.showDiff = true
		return nil
	case key.Matches(k, m.keys.Copy):
		m.copyBuffer()
		return nil
	case key.Matches(k, m.keys.Focus):
		if m.focus == focusEditor {
			m.focus = focusPreview
		} else {
			m.focus = focusEditor
		}
		return nil
	case key.Matches(k, m.keys.Narrow):
		m.nudgeSplit(-nudge)
		return nil
	case key.Matches(k, m.keys.Widen):
		m.nudgeSplit(nudge)
		return nil
	}

	if m.focus == focusPreview {
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(k)
		return cmd
	}
	m.editKey(k)
	return nil
}

// editKey offers the key to the session first and applies the default edit
// unless a handler consumed it.
func (m *Model) editKey(k tea.KeyMsg) {
	ev := editor.Event{Key: keyName(k), Alt: k.Alt}
	switch k.Type {
	case tea.KeyShiftLeft, tea.KeyShiftRight, tea.KeyShiftUp, tea.KeyShiftDown, tea.KeyShiftTab:
		ev.Shift = true
	}
	before, top := m.input.Value(), m.input.ScrollTop()
	if m.keyDown(ev) {
		return
	}

	switch k.Type {
	case tea.KeyRunes, tea.KeySpace:
		m.input.InsertText(string(k.Runes))
	case tea.KeyEnter:
		m.input.InsertText("\n")
	case tea.KeyTab:
		m.input.InsertText("\t")
	case tea.KeyBackspace:
		m.input.Backspace()
	case tea.KeyDelete:
		m.input.Delete()
	case tea.KeyLeft, tea.KeyShiftLeft:
		m.input.Move(wedit.Left, ev.Shift)
	case tea.KeyRight, tea.KeyShiftRight:
		m.input.Move(wedit.Right, ev.Shift)
	case tea.KeyUp, tea.KeyShiftUp:
		m.input.Move(wedit.Up, ev.Shift)
	case tea.KeyDown, tea.KeyShiftDown:
		m.input.Move(wedit.Down, ev.Shift)
	case tea.KeyHome:
		m.input.Move(wedit.Home, false)
	case tea.KeyEnd:
		m.input.Move(wedit.End, false)
	case tea.KeyPgUp:
		m.input.Move(wedit.PageUp, false)
	case tea.KeyPgDown:
		m.input.Move(wedit.PageDown, false)
	}

	if m.input.Value() != before {
		m.session.Dispatch(&editor.Event{Control: editor.ControlInput, Kind: editor.EventInput})
	}
	if m.input.ScrollTop() != top {
		m.scrolled()
	}
}

// keyDown dispatches a keydown on the input and reports whether a handler
// consumed it.
func (m *Model) keyDown(ev editor.Event) bool {
	ev.Control, ev.Kind = editor.ControlInput, editor.EventKeyDown
	m.session.Dispatch(&ev)
	return ev.DefaultPrevented
}

func (m *Model) click(c editor.Control) {
	m.session.Dispatch(&editor.Event{Control: c, Kind: editor.EventClick})
}

func (m *Model) scrolled() {
	m.session.Dispatch(&editor.Event{Control: editor.ControlInput, Kind: editor.EventScroll, ScrollTop: m.input.ScrollTop()})
}

func (m *Model) answer(ok bool) {
	c := m.confirm
	m.confirm = nil
	c.answer(ok)
}

// nudgeSplit drags the handle by dx cells.
func (m *Model) nudgeSplit(dx int) {
	x := m.leftW
	m.session.Dispatch(&editor.Event{Control: editor.ControlHandle, Kind: editor.EventPointerDown, X: x})
	m.session.Dispatch(&editor.Event{Control: editor.ControlDocument, Kind: editor.EventPointerMove, X: x + dx})
	m.session.Dispatch(&editor.Event{Control: editor.ControlDocument, Kind: editor.EventPointerUp, X: x + dx})
}

func (m *Model) handleMouse(ev tea.MouseMsg) {
	bodyTop, bodyH := 1, m.bodyHeight()
	inBody := ev.Y >= bodyTop && ev.Y < bodyTop+bodyH

	switch {
	case ev.Action == tea.MouseActionPress && ev.Button == tea.MouseButtonLeft:
		if ev.Y == 0 {
			if c, ok := toolbar.HitTest(ev.X, m.opts.NoColor); ok && m.confirm == nil {
				m.click(c)
			}
			return
		}
		if !inBody || m.showHelp || m.showDiff {
			return
		}
		switch {
		case ev.X == m.leftW:
			m.dragging = true
			m.session.Dispatch(&editor.Event{Control: editor.ControlHandle, Kind: editor.EventPointerDown, X: ev.X})
		case ev.X < m.leftW:
			m.focus = focusEditor
			if x := ev.X - m.gutter.Width(); x >= 0 {
				top := m.input.ScrollTop()
				m.input.ClickAt(x, ev.Y-bodyTop)
				if m.input.ScrollTop() != top {
					m.scrolled()
				}
			}
		default:
			m.focus = focusPreview
		}
	case ev.Action == tea.MouseActionMotion:
		m.session.Dispatch(&editor.Event{Control: editor.ControlDocument, Kind: editor.EventPointerMove, X: ev.X})
	case ev.Action == tea.MouseActionRelease:
		m.dragging = false
		m.session.Dispatch(&editor.Event{Control: editor.ControlDocument, Kind: editor.EventPointerUp, X: ev.X})
	case ev.Button == tea.MouseButtonWheelUp || ev.Button == tea.MouseButtonWheelDown:
		step := wheelStep
		if ev.Button == tea.MouseButtonWheelUp {
			step = -step
		}
		if ev.X < m.leftW {
			top := m.input.ScrollTop()
			m.input.ScrollBy(step)
			if m.input.ScrollTop() != top {
				m.scrolled()
			}
			return
		}
		m.view.SetYOffset(m.view.YOffset + step)
	}
}

func (m *Model) copyBuffer() {
	if err := clipboard.WriteAll(m.input.Value()); err != nil {
		m.notice = "Copy failed: " + err.Error()
		return
	}
	m.notice = "Copied buffer to clipboard"
}

// containerWidth excludes the handle column.
func (m *Model) containerWidth() int { return m.width - 1 }

func (m *Model) bodyHeight() int { return max(m.height-3, 1) }

// resize recomputes panel widths from the current layout.
func (m *Model) resize() {
	m.leftW, m.rightW = state.Widths(m.layout, m.containerWidth())
	h := m.bodyHeight()
	m.input.SetSize(max(m.leftW-m.gutter.Width(), 1), h)
	m.view.Width, m.view.Height = m.rightW, h
	m.shown = ""
	m.syncPreview()
}

// syncPreview refreshes the viewport when the rendering changed.
func (m *Model) syncPreview() {
	content := m.preview.Content()
	if title := m.preview.Title(); title != "" {
		content = lipgloss.NewStyle().Bold(true).Render(title) + "\n\n" + content
	}
	if content == m.shown {
		return
	}
	m.shown = content
	if m.view.Width > 0 {
		content = lipgloss.NewStyle().Width(m.view.Width).Render(content)
	}
	m.view.SetContent(content)
}

func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	rows := []string{m.toolbarRow(), m.body(), m.messageRow(), m.statusRow()}
	return strings.Join(rows, "\n")
}

func (m *Model) toolbarRow() string {
	left := toolbar.View(m.opts.NoColor)
	right := chips.View(util.ComputeChips(util.ChipInput{
		Rendered: m.rendered,
		Current:  m.input.Value(),
		Error:    m.banner != "",
		Relay:    m.opts.Relay != nil,
		Bridge:   m.opts.Bridge != nil,
		Clients:  m.clients,
	}), m.opts.NoColor)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) body() string {
	h := m.bodyHeight()
	box := lipgloss.NewStyle().Width(m.width).Height(h).MaxHeight(h)
	if m.showHelp {
		return box.Render(m.help.View(m.keys))
	}
	if m.showDiff {
		return box.Render(m.diffView.View(m.diffMode, m.width, m.rendered, m.input.Value()) +
			"\n" + faintStyle.Render("v: unified/side-by-side  esc: close"))
	}

	left := lipgloss.JoinHorizontal(lipgloss.Top,
		m.gutter.View(h),
		m.input.View(m.focus == focusEditor),
	)
	left = lipgloss.NewStyle().Width(m.leftW).MaxWidth(m.leftW).Render(left)

	hs := handleStyle
	if m.dragging {
		hs = dragStyle
	}
	handle := hs.Render(strings.TrimSuffix(strings.Repeat("│\n", h), "\n"))

	right := lipgloss.NewStyle().Width(m.rightW).MaxWidth(m.rightW).Height(h).Render(m.view.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, handle, right)
}

func (m *Model) messageRow() string {
	switch {
	case m.confirm != nil:
		return confirmStyle.Render(m.confirm.prompt + " [y/n]")
	case m.banner != "":
		return bannerStyle.Width(m.width).Render(m.banner)
	}
	return ""
}

func (m *Model) statusRow() string {
	line, col := m.input.Position()
	added, removed := diff.Stats(m.rendered, m.input.Value())
	s := m.bar.View(statusbar.Status{
		Focus:     m.focus,
		Line:      line,
		Col:       col,
		LeftShare: m.layout.LeftShare,
		Dragging:  m.dragging,
		Added:     added,
		Removed:   removed,
		BridgeURL: m.opts.BridgeURL,
		Notice:    m.notice,
	})
	hint := m.help.Short(m.keys)
	if gap := m.width - lipgloss.Width(s) - lipgloss.Width(hint); gap >= 2 {
		return s + strings.Repeat(" ", gap) + hint
	}
	return s
}

// keyName maps bubbletea key names to the names the session uses.
func keyName(k tea.KeyMsg) string {
	switch k.Type {
	case tea.KeyTab:
		return editor.KeyIndent
	case tea.KeyEnter:
		return editor.KeyEnter
	case tea.KeyRunes:
		return string(k.Runes)
	}
	return k.String()
}
