// Package text renders markup into readable plain text for terminal preview
// panes. It has no script runtime and therefore never reports script errors.
package text

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"htmlpad/internal/editor"
)

// Surface keeps the text rendering of the latest load.
type Surface struct {
	mu      sync.Mutex
	next    editor.Handle
	title   string
	content string
}

// New returns an empty surface.
func New() *Surface { return &Surface{} }

// Load parses content and replaces the rendering.
func (s *Surface) Load(content string) (editor.Handle, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return 0, fmt.Errorf("parse markup: %w", err)
	}
	w := &walker{}
	w.walk(doc)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.title = strings.TrimSpace(w.title)
	s.content = w.String()
	return s.next, nil
}

// SubscribeError is a no-op: nothing runs inside a text surface.
func (s *Surface) SubscribeError(editor.Handle, func(editor.ScriptError)) {}

// Content returns the rendering of the latest load.
func (s *Surface) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// Title returns the document title of the latest load.
func (s *Surface) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// Render is a convenience for one-off conversions.
func Render(content string) (string, error) {
	s := New()
	if _, err := s.Load(content); err != nil {
		return "", err
	}
	return s.Content(), nil
}

type walker struct {
	lines []string
	cur   strings.Builder
	title string
	pre   int
}

func (w *walker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		case atom.Title:
			if n.FirstChild != nil {
				w.title += n.FirstChild.Data
			}
			return
		case atom.Head:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && c.DataAtom == atom.Title {
					w.walk(c)
				}
			}
			return
		case atom.Br:
			w.flush(true)
			return
		case atom.Hr:
			w.flush(false)
			w.lines = append(w.lines, "────────")
			return
		case atom.Img:
			if alt := attr(n, "alt"); alt != "" {
				w.text("[" + alt + "]")
			}
			return
		case atom.Input, atom.Textarea:
			w.text("[" + attr(n, "value") + "]")
			return
		case atom.Button:
			w.text("[ ")
			w.children(n)
			w.text(" ]")
			return
		case atom.Li:
			w.flush(false)
			w.cur.WriteString("• ")
			w.children(n)
			w.flush(false)
			return
		case atom.Pre:
			w.flush(false)
			w.pre++
			w.children(n)
			w.flush(false)
			w.pre--
			return
		}
		if block(n.DataAtom) {
			w.flush(false)
			w.children(n)
			w.flush(false)
			return
		}
	}
	w.children(n)
}

func (w *walker) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *walker) text(s string) {
	if w.pre > 0 {
		parts := strings.Split(s, "\n")
		for i, p := range parts {
			if i > 0 {
				w.flush(true)
			}
			w.cur.WriteString(p)
		}
		return
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" && w.cur.Len() > 0 && !strings.HasSuffix(w.cur.String(), " ") {
			w.cur.WriteByte(' ')
		}
		return
	}
	if startsWithSpace(s) && w.cur.Len() > 0 && !strings.HasSuffix(w.cur.String(), " ") {
		w.cur.WriteByte(' ')
	}
	w.cur.WriteString(strings.Join(fields, " "))
	if endsWithSpace(s) {
		w.cur.WriteByte(' ')
	}
}

// flush ends the current line. Empty lines are kept only when forced.
func (w *walker) flush(force bool) {
	line := w.cur.String()
	if w.pre == 0 {
		line = strings.TrimSpace(line)
	}
	w.cur.Reset()
	if line == "" && !force {
		return
	}
	w.lines = append(w.lines, line)
}

func (w *walker) String() string {
	w.flush(false)
	return strings.Join(w.lines, "\n")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func block(a atom.Atom) bool {
	switch a {
	case atom.Address, atom.Article, atom.Aside, atom.Blockquote, atom.Body,
		atom.Dd, atom.Details, atom.Div, atom.Dl, atom.Dt, atom.Fieldset,
		atom.Figcaption, atom.Figure, atom.Footer, atom.Form, atom.H1, atom.H2,
		atom.H3, atom.H4, atom.H5, atom.H6, atom.Header, atom.Html, atom.Main,
		atom.Nav, atom.Ol, atom.P, atom.Section, atom.Summary, atom.Table,
		atom.Tr, atom.Ul:
		return true
	}
	return false
}

func startsWithSpace(s string) bool {
	return s != "" && strings.ContainsRune(" \t\n\r\f", rune(s[0]))
}

func endsWithSpace(s string) bool {
	return s != "" && strings.ContainsRune(" \t\n\r\f", rune(s[len(s)-1]))
}
