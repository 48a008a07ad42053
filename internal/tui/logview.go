package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"htmlpad/internal/server"
)

// ServerInfo is the static header of the server view.
type ServerInfo struct {
	URL       string
	Public    string
	BridgeURL string
	Shared    string // public tunnel URL, if any
	LogDir    string // where S saves the log; defaults to .htmlpad/logs
}

// route aggregates the requests seen for one method and path.
type route struct {
	Key      string
	Count    int
	Errors   int
	Last     int
	Total    time.Duration
	LastSeen time.Time
}

func (r route) avg() time.Duration {
	if r.Count == 0 {
		return 0
	}
	return r.Total / time.Duration(r.Count)
}

const logPanelLines = 12

var (
	selStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "27", Dark: "75"})
	errRouteStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
	highlightStyle = lipgloss.NewStyle().Background(lipgloss.AdaptiveColor{Light: "228", Dark: "94"}).Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "0"})
)

type serverModel struct {
	info    ServerInfo
	routes  map[string]*route
	order   []string
	sel     int
	clients int

	showLogs  bool
	logs      []string
	logOffset int
	width     int
	wrapLogs  bool
	status    string
	frozen    bool
	frozenBuf []string

	searching  bool
	searchBuf  string
	searchIdxs []int
	searchPos  int

	reqs <-chan server.RequestLog
	ch   <-chan string
}

type logMsg string

type requestMsg server.RequestLog

func waitLog(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return logMsg(s)
	}
}

func waitRequest(ch <-chan server.RequestLog) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return requestMsg(r)
	}
}

func newServerModel(info ServerInfo, reqs <-chan server.RequestLog, logs <-chan string) *serverModel {
	if info.LogDir == "" {
		info.LogDir = filepath.Join(".htmlpad", "logs")
	}
	return &serverModel{info: info, routes: map[string]*route{}, reqs: reqs, ch: logs, showLogs: true}
}

// ShowServer runs the request monitor until the user quits or ctx ends; the
// terminal is restored either way. clients, when set, receives a callback
// that reports bridge tab counts.
func ShowServer(ctx context.Context, info ServerInfo, reqs <-chan server.RequestLog, logs <-chan string, clients func(func(int)), extra ...tea.ProgramOption) error {
	m := newServerModel(info, reqs, logs)
	opts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, extra...)
	p := tea.NewProgram(m, opts...)
	if clients != nil {
		clients(func(n int) { p.Send(clientsMsg(n)) })
	}
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *serverModel) Init() tea.Cmd {
	return tea.Batch(waitLog(m.ch), waitRequest(m.reqs))
}

func (m *serverModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(v)
	case logMsg:
		m.appendLog(string(v))
		return m, waitLog(m.ch)
	case requestMsg:
		m.record(server.RequestLog(v))
		return m, waitRequest(m.reqs)
	case clientsMsg:
		m.clients = int(v)
	case tea.WindowSizeMsg:
		if v.Width > 0 {
			m.width = v.Width
		}
	}
	return m, nil
}

func (m *serverModel) handleKey(v tea.KeyMsg) tea.Cmd {
	k := v.String()
	if m.searching {
		switch strings.ToLower(k) {
		case "enter":
			m.searching = false
			m.computeSearch()
			m.jumpToResult(0)
		case "esc":
			m.searching = false
			m.searchBuf = ""
			m.searchIdxs = nil
			m.searchPos = 0
		default:
			if v.Type == tea.KeyBackspace || v.Type == tea.KeyCtrlH {
				if r := []rune(m.searchBuf); len(r) > 0 {
					m.searchBuf = string(r[:len(r)-1])
				}
			} else if v.Type == tea.KeyRunes || v.Type == tea.KeySpace {
				m.searchBuf += string(v.Runes)
			}
		}
		return nil
	}
	switch k {
	case "q", "ctrl+c":
		return tea.Quit
	case "l":
		m.showLogs = !m.showLogs
	case "j", "down":
		if m.showLogs {
			m.logOffset = max(m.logOffset-1, 0)
		} else if m.sel < len(m.order)-1 {
			m.sel++
		}
	case "k", "up":
		if m.showLogs {
			m.logOffset = min(m.logOffset+1, max(len(m.logs)-logPanelLines, 0))
		} else if m.sel > 0 {
			m.sel--
		}
	case "G", "end":
		m.logOffset = 0
	case "w":
		m.wrapLogs = !m.wrapLogs
	case "/":
		m.searching = true
		m.searchBuf = ""
		m.showLogs = true
	case "n", "N":
		if len(m.searchIdxs) == 0 && strings.TrimSpace(m.searchBuf) != "" {
			m.computeSearch()
		}
		if len(m.searchIdxs) > 0 {
			step := 1
			if k == "N" {
				step = -1
			}
			m.jumpToResult(m.searchPos + step)
		}
	case "s", "S":
		if path, err := m.saveLogs(); err == nil {
			m.status = "Saved logs to " + path
		} else {
			m.status = "Save failed: " + err.Error()
		}
	case "f":
		m.frozen = !m.frozen
		if !m.frozen && len(m.frozenBuf) > 0 {
			m.logs = append(m.logs, m.frozenBuf...)
			m.frozenBuf = nil
		}
		if m.frozen {
			m.status = "Logs frozen"
		} else {
			m.status = "Logs resumed"
		}
	case "r":
		m.routes = map[string]*route{}
		m.order = nil
		m.sel = 0
		m.status = "Counters reset"
	}
	return nil
}

func (m *serverModel) appendLog(line string) {
	if m.frozen {
		m.frozenBuf = append(m.frozenBuf, line)
		return
	}
	m.logs = append(m.logs, line)
}

// record folds one request into its route and logs it.
func (m *serverModel) record(r server.RequestLog) {
	key := r.Method + " " + r.Path
	rt, ok := m.routes[key]
	if !ok {
		rt = &route{Key: key}
		m.routes[key] = rt
		m.order = append(m.order, key)
		sort.Strings(m.order)
	}
	rt.Count++
	rt.Last = r.Status
	rt.Total += r.Duration
	rt.LastSeen = r.Time
	if r.Status >= 500 {
		rt.Errors++
	}
	m.appendLog(FormatRequest(r))
}

// FormatRequest renders a request as one log line.
func FormatRequest(r server.RequestLog) string {
	return fmt.Sprintf("%s %s %s %d %dB %s",
		r.Time.Format("15:04:05"), r.Method, r.Path, r.Status, r.Bytes, r.Duration.Round(time.Microsecond))
}

func (m *serverModel) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("htmlpad server") + "\n")
	fmt.Fprintf(&b, "    %-10s %s\n", "Editor:", m.info.URL)
	if m.info.Shared != "" {
		fmt.Fprintf(&b, "    %-10s %s\n", "Shared:", m.info.Shared)
	}
	if m.info.Public != "" {
		fmt.Fprintf(&b, "    %-10s %s\n", "Assets:", m.info.Public)
	}
	if m.info.BridgeURL != "" {
		fmt.Fprintf(&b, "    %-10s %s (%d attached)\n", "Bridge:", m.info.BridgeURL, m.clients)
	}
	b.WriteString("\n")

	if len(m.order) == 0 {
		b.WriteString(faintStyle.Render("    no requests yet") + "\n")
	}
	for i, key := range m.order {
		rt := m.routes[key]
		line := fmt.Sprintf("%-28s %5d req  last %d  avg %s", rt.Key, rt.Count, rt.Last, rt.avg().Round(time.Microsecond))
		if rt.Errors > 0 {
			line += errRouteStyle.Render(fmt.Sprintf("  %d failed", rt.Errors))
		}
		if i == m.sel && !m.showLogs {
			line = selStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	status := ""
	if m.searching {
		status = "  /" + m.searchBuf
	} else if len(m.searchIdxs) > 0 {
		status = fmt.Sprintf("  [%d/%d]", m.searchPos+1, len(m.searchIdxs))
	}
	b.WriteString("\n(l) logs (j/k) scroll (/) search (n/N) next (S) save (f) freeze (w) wrap (r) reset (q) quit" + status + "\n")
	if strings.TrimSpace(m.status) != "" {
		b.WriteString(faintStyle.Render(m.status) + "\n")
	}
	if !m.showLogs {
		return b.String()
	}
	if m.searching {
		sb := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
		b.WriteString(sb.Render("Search: "+m.searchBuf) + "\n")
	}

	end := max(len(m.logs)-m.logOffset, 0)
	start := max(end-logPanelLines, 0)
	avail := m.width
	if avail <= 0 {
		avail = 100
	}
	avail = max(avail-4, 20)
	lines := make([]string, 0, end-start)
	for i, ln := range m.logs[start:end] {
		if r := []rune(ln); !m.wrapLogs && len(r) > avail {
			ln = string(r[:avail-1]) + "…"
		}
		lines = append(lines, m.highlight(ln, start+i))
	}
	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	if m.wrapLogs {
		border = border.Width(avail)
	}
	b.WriteString(border.Render(strings.Join(lines, "\n")))
	return b.String()
}

// computeSearch indexes the log lines containing searchBuf, ignoring case.
func (m *serverModel) computeSearch() {
	m.searchIdxs = nil
	m.searchPos = 0
	q := strings.ToLower(strings.TrimSpace(m.searchBuf))
	if q == "" {
		return
	}
	for i, ln := range m.logs {
		if strings.Contains(strings.ToLower(ln), q) {
			m.searchIdxs = append(m.searchIdxs, i)
		}
	}
}

// jumpToResult scrolls so the pos-th match is the bottom line; pos wraps.
func (m *serverModel) jumpToResult(pos int) {
	if len(m.searchIdxs) == 0 {
		return
	}
	if pos < 0 {
		pos = len(m.searchIdxs) - 1
	}
	if pos >= len(m.searchIdxs) {
		pos = 0
	}
	m.searchPos = pos
	m.logOffset = max(len(m.logs)-(m.searchIdxs[pos]+1), 0)
}

func (m *serverModel) highlight(s string, idx int) string {
	q := strings.ToLower(strings.TrimSpace(m.searchBuf))
	if q == "" || !containsIndex(m.searchIdxs, idx) {
		return s
	}
	lower := strings.ToLower(s)
	if len(lower) != len(s) {
		return s
	}
	var out strings.Builder
	for {
		p := strings.Index(lower, q)
		if p < 0 {
			out.WriteString(s)
			return out.String()
		}
		out.WriteString(s[:p])
		out.WriteString(highlightStyle.Render(s[p : p+len(q)]))
		s, lower = s[p+len(q):], lower[p+len(q):]
	}
}

func containsIndex(a []int, x int) bool {
	for _, v := range a {
		if v == x {
			return true
		}
	}
	return false
}

func (m *serverModel) saveLogs() (string, error) {
	if err := os.MkdirAll(m.info.LogDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(m.info.LogDir, time.Now().Format("20060102_150405")+".log")
	data := strings.Join(append(append([]string(nil), m.logs...), m.frozenBuf...), "\n")
	return path, os.WriteFile(path, []byte(data+"\n"), 0o644)
}

// LineSink is an io.Writer that forwards complete lines to a channel for
// the server view. Lines are dropped while the channel is full.
type LineSink struct {
	mu  sync.Mutex
	buf []byte
	ch  chan string
}

// NewLineSink returns a sink whose channel holds up to size lines.
func NewLineSink(size int) *LineSink {
	return &LineSink{ch: make(chan string, size)}
}

// Lines is the receiving end.
func (s *LineSink) Lines() <-chan string { return s.ch }

func (s *LineSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, p...)
	for {
		i := strings.IndexByte(string(s.buf), '\n')
		if i < 0 {
			break
		}
		line := string(s.buf[:i])
		s.buf = s.buf[i+1:]
		select {
		case s.ch <- line:
		default:
		}
	}
	return len(p), nil
}
