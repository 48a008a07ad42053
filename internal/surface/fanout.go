// Package surface combines rendering surfaces.
package surface

import (
	"errors"
	"fmt"
	"sync"

	"htmlpad/internal/editor"
)

type member struct {
	s editor.Surface
	h editor.Handle
}

// Fanout loads the same content into several surfaces under one handle.
// Error subscriptions apply to every member of the current load.
type Fanout struct {
	mu       sync.Mutex
	surfaces []editor.Surface
	next     editor.Handle
	current  []member
}

// NewFanout returns a surface backed by all of surfaces. Nil entries are
// skipped.
func NewFanout(surfaces ...editor.Surface) *Fanout {
	f := &Fanout{}
	for _, s := range surfaces {
		if s != nil {
			f.surfaces = append(f.surfaces, s)
		}
	}
	return f
}

// Load fails if any member fails.
func (f *Fanout) Load(content string) (editor.Handle, error) {
	members := make([]member, 0, len(f.surfaces))
	var errs []error
	for i, s := range f.surfaces {
		h, err := s.Load(content)
		if err != nil {
			errs = append(errs, fmt.Errorf("surface %d: %w", i, err))
			continue
		}
		members = append(members, member{s: s, h: h})
	}
	if len(errs) > 0 {
		return 0, errors.Join(errs...)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.current = members
	return f.next, nil
}

// SubscribeError ignores handles other than the latest.
func (f *Fanout) SubscribeError(h editor.Handle, fn func(editor.ScriptError)) {
	f.mu.Lock()
	if h != f.next {
		f.mu.Unlock()
		return
	}
	members := append([]member(nil), f.current...)
	f.mu.Unlock()

	for _, m := range members {
		m.s.SubscribeError(m.h, fn)
	}
}

// Len returns the number of member surfaces.
func (f *Fanout) Len() int { return len(f.surfaces) }
