// Package server hosts the browser editor: static assets, the pass-through
// preview endpoint and the preview bridge websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// DefaultMaxBody caps POST /preview bodies.
const DefaultMaxBody = 1 << 20

// ErrBodyShape reports a JSON body that is not an object with a string
// htmlContent member.
var ErrBodyShape = errors.New("body must be a JSON object with a string htmlContent")

const previewSchema = `{
  "type": "object",
  "required": ["htmlContent"],
  "properties": {
    "htmlContent": {"type": "string"}
  }
}`

// Options configures New.
type Options struct {
	Addr    string
	Public  fs.FS
	MaxBody int64
	Bridge  http.Handler
	// Example is served as plain text at GET /example for the browser editor.
	Example string
	Log     *slog.Logger
	// OnRequest is called after every request from the serving goroutine.
	OnRequest func(RequestLog)
}

// RequestLog describes one served request.
type RequestLog struct {
	Time     time.Time
	Method   string
	Path     string
	Status   int
	Bytes    int
	Duration time.Duration
}

// Server is the HTTP front of htmlpad.
type Server struct {
	srv     *http.Server
	schema  *jsonschema.Schema
	maxBody int64
	log     *slog.Logger
	hook    func(RequestLog)

	mu sync.Mutex
	ln net.Listener
}

// New builds the server and its routes. Nothing listens until Listen.
func New(opts Options) (*Server, error) {
	if opts.Log == nil {
		opts.Log = slog.New(slog.DiscardHandler)
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = DefaultMaxBody
	}
	schema, err := compilePreviewSchema()
	if err != nil {
		return nil, fmt.Errorf("compile preview schema: %w", err)
	}
	s := &Server{schema: schema, maxBody: opts.MaxBody, log: opts.Log, hook: opts.OnRequest}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /preview", s.preview)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Example != "" {
		example := opts.Example
		mux.HandleFunc("GET /example", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = io.WriteString(w, example)
		})
	}
	if opts.Bridge != nil {
		mux.Handle("GET /bridge", opts.Bridge)
	}
	if opts.Public != nil {
		mux.Handle("GET /", noListing(opts.Public, http.FileServerFS(opts.Public)))
	}

	s.srv = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.logRequests(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler exposes the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Listen binds the configured address.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.srv.Addr
}

// Serve blocks until Close. It returns nil after a clean shutdown.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
		s.mu.Lock()
		ln = s.ln
		s.mu.Unlock()
	}
	s.log.Info("serving", "addr", ln.Addr().String())
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Close(ctx context.Context) error { return s.srv.Shutdown(ctx) }

func compilePreviewSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(previewSchema))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("preview.schema.json", doc); err != nil {
		return nil, err
	}
	return c.Compile("preview.schema.json")
}

// preview echoes htmlContent back untouched.
func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	markup, err := s.decodePreview(w, r)
	if err != nil {
		s.log.Debug("preview rejected", "err", err)
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, markup)
}

func (s *Server) decodePreview(w http.ResponseWriter, r *http.Request) (string, error) {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	inst, err := jsonschema.UnmarshalJSON(body)
	if err != nil {
		return "", err
	}
	if err := s.schema.Validate(inst); err != nil {
		s.log.Debug("preview body shape", "detail", err)
		return "", ErrBodyShape
	}
	markup, ok := inst.(map[string]any)["htmlContent"].(string)
	if !ok {
		return "", ErrBodyShape
	}
	return markup, nil
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, "Error: "+err.Error())
}

// noListing answers 404 for directories without an index.html.
func noListing(fsys fs.FS, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" {
			name = "."
		}
		if fi, err := fs.Stat(fsys, name); err == nil && fi.IsDir() {
			if _, err := fs.Stat(fsys, path.Join(name, "index.html")); err != nil {
				http.NotFound(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
