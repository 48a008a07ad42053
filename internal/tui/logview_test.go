package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"htmlpad/internal/server"
)

func req(method, path string, status int) server.RequestLog {
	return server.RequestLog{
		Time:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Method:   method,
		Path:     path,
		Status:   status,
		Bytes:    12,
		Duration: 2 * time.Millisecond,
	}
}

func keyPress(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestServerViewAggregatesRoutes(t *testing.T) {
	m := newServerModel(ServerInfo{URL: "http://127.0.0.1:3000"}, nil, nil)
	m.Update(requestMsg(req("POST", "/preview", 200)))
	m.Update(requestMsg(req("POST", "/preview", 500)))
	m.Update(requestMsg(req("GET", "/", 200)))

	require.Equal(t, []string{"GET /", "POST /preview"}, m.order)
	assert.Equal(t, 2, m.routes["POST /preview"].Count)
	assert.Equal(t, 1, m.routes["POST /preview"].Errors)
	assert.Equal(t, 500, m.routes["POST /preview"].Last)
	assert.Len(t, m.logs, 3)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "http://127.0.0.1:3000")
	assert.Contains(t, view, "1 failed")
	assert.Contains(t, view, "03:04:05 POST /preview 500 12B 2ms")

	m.Update(keyPress("r"))
	assert.Empty(t, m.order)
}

func TestServerViewFreezeBuffersLogs(t *testing.T) {
	m := newServerModel(ServerInfo{}, nil, nil)
	m.Update(logMsg("one"))
	m.Update(keyPress("f"))
	m.Update(logMsg("two"))
	assert.Equal(t, []string{"one"}, m.logs)
	assert.Equal(t, "Logs frozen", m.status)

	m.Update(keyPress("f"))
	assert.Equal(t, []string{"one", "two"}, m.logs)
}

func TestServerViewSearch(t *testing.T) {
	m := newServerModel(ServerInfo{}, nil, nil)
	for i := range 30 {
		m.Update(logMsg(fmt.Sprintf("line %d", i)))
	}
	m.Update(logMsg("needle here"))
	m.Update(logMsg("tail"))

	m.Update(keyPress("/"))
	for _, r := range "NEEDLE" {
		m.Update(keyPress(string(r)))
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.searching)
	assert.Equal(t, []int{30}, m.searchIdxs)
	assert.Equal(t, 1, m.logOffset)
	assert.Contains(t, ansi.Strip(m.View()), "needle here")

	m.Update(keyPress("n"))
	assert.Equal(t, 0, m.searchPos)
}

func TestServerViewSavesLogs(t *testing.T) {
	dir := t.TempDir()
	m := newServerModel(ServerInfo{LogDir: dir}, nil, nil)
	m.Update(logMsg("a"))
	m.Update(logMsg("b"))
	m.Update(keyPress("S"))
	require.Contains(t, m.status, "Saved logs to ")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(data))
}

func TestServerViewStreamsChannels(t *testing.T) {
	reqs := make(chan server.RequestLog, 1)
	logs := make(chan string, 1)
	m := newServerModel(ServerInfo{}, reqs, logs)
	reqs <- req("GET", "/healthz", 200)

	msg := waitRequest(reqs)()
	_, cmd := m.Update(msg)
	assert.NotNil(t, cmd)
	assert.Equal(t, 1, m.routes["GET /healthz"].Count)

	close(logs)
	assert.Nil(t, waitLog(logs)())
}

func TestLineSinkSplitsLines(t *testing.T) {
	s := NewLineSink(2)
	_, _ = s.Write([]byte("first\nsec"))
	_, _ = s.Write([]byte("ond\nthird\n"))
	assert.Equal(t, "first", <-s.Lines())
	assert.Equal(t, "second", <-s.Lines())
	select {
	case l := <-s.Lines():
		t.Fatalf("full sink should drop, got %q", l)
	default:
	}
}

func TestShowServerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ShowServer(ctx, ServerInfo{URL: "http://127.0.0.1:1"}, nil, nil, nil,
			tea.WithInput(nil), tea.WithOutput(io.Discard))
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor kept running after cancel")
	}
}
