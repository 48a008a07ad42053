// Package browser bridges previews to browser tabs over a websocket. Each
// attached tab renders the latest load in an iframe and reports uncaught
// script errors back to the hub.
package browser

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"htmlpad/internal/editor"
)

// ErrSurfaceClosed is returned by Load after Close.
var ErrSurfaceClosed = errors.New("browser: surface closed")

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
)

// upgrader keeps gorilla's same-origin check: only the bridge page served
// alongside the hub may attach.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub is an editor.Surface whose loads are broadcast to every attached tab.
// It is also the http.Handler for the bridge websocket.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	next    editor.Handle
	last    []byte
	sub     func(editor.ScriptError)
	closed  bool

	log      *slog.Logger
	onChange func(clients int)
}

// NewHub returns a hub with no clients. log may be nil.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Hub{clients: make(map[*client]struct{}), log: log}
}

// OnClientsChanged registers fn to run (on a hub goroutine) whenever a tab
// attaches or detaches.
func (h *Hub) OnClientsChanged(fn func(clients int)) {
	h.mu.Lock()
	h.onChange = fn
	h.mu.Unlock()
}

// Load broadcasts content under a fresh handle and keeps it for tabs that
// attach later. The previous error subscription ends here.
func (h *Hub) Load(content string) (editor.Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, ErrSurfaceClosed
	}
	frame, err := loadFrame(h.next+1, content)
	if err != nil {
		return 0, err
	}
	h.next++
	h.last = frame
	h.sub = nil
	for c := range h.clients {
		h.deliver(c, frame)
	}
	return h.next, nil
}

// SubscribeError ignores handles other than the latest. fn is called from a
// websocket read goroutine.
func (h *Hub) SubscribeError(hd editor.Handle, fn func(editor.ScriptError)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if hd == h.next {
		h.sub = fn
	}
}

// Clients returns the number of attached tabs.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close detaches every tab and rejects further loads.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	return nil
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("bridge upgrade failed", "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	if h.last != nil {
		h.deliver(c, h.last)
	}
	n, notify := len(h.clients), h.onChange
	h.mu.Unlock()

	h.log.Info("bridge client attached", "remote", r.RemoteAddr, "clients", n)
	if notify != nil {
		notify(n)
	}
	go c.writer()
	h.reader(c)
}

// deliver queues frame without blocking; a tab that falls behind misses it.
// Callers hold h.mu.
func (h *Hub) deliver(c *client, frame []byte) {
	select {
	case c.send <- frame:
	default:
		h.log.Debug("bridge client slow, frame dropped")
	}
}

func (h *Hub) reader(c *client) {
	defer func() {
		c.conn.Close()
		h.mu.Lock()
		_, ok := h.clients[c]
		if ok {
			delete(h.clients, c)
			close(c.send)
		}
		n, notify := len(h.clients), h.onChange
		h.mu.Unlock()
		if ok {
			h.log.Info("bridge client detached", "clients", n)
			if notify != nil {
				notify(n)
			}
		}
	}()
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		h.handle(msg)
	}
}

func (h *Hub) handle(msg []byte) {
	if !gjson.ValidBytes(msg) {
		h.log.Debug("bridge frame is not JSON")
		return
	}
	frame := gjson.ParseBytes(msg)
	switch typ := frame.Get("type").String(); typ {
	case "error":
		hd := editor.Handle(frame.Get("handle").Uint())
		h.mu.Lock()
		var fn func(editor.ScriptError)
		if hd == h.next {
			fn = h.sub
		}
		h.mu.Unlock()
		if fn == nil {
			h.log.Debug("bridge error for stale load dropped", "handle", hd)
			return
		}
		fn(editor.ScriptError{
			Message: frame.Get("message").String(),
			Line:    int(frame.Get("line").Int()),
			Column:  int(frame.Get("column").Int()),
			Source:  frame.Get("source").String(),
		})
	case "ready":
		h.log.Debug("bridge client ready", "handle", frame.Get("handle").Uint())
	default:
		h.log.Debug("bridge frame ignored", "type", typ)
	}
}

func (c *client) writer() {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

func loadFrame(h editor.Handle, content string) ([]byte, error) {
	frame, err := sjson.SetBytes([]byte(`{"type":"load"}`), "handle", uint64(h))
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(frame, "html", content)
}
