// Package relay renders through a running server: content goes out through
// POST /preview and whatever comes back is loaded into the wrapped surface.
package relay

import (
	"context"
	"fmt"
	"time"

	"htmlpad/internal/editor"
)

// DefaultTimeout bounds one round trip.
const DefaultTimeout = 5 * time.Second

// Poster sends markup to the preview endpoint.
type Poster interface {
	PostPreview(ctx context.Context, markup string) (string, error)
}

// Surface wraps another surface.
type Surface struct {
	inner   editor.Surface
	poster  Poster
	timeout time.Duration
}

// New returns a relay in front of inner. A non-positive timeout uses
// DefaultTimeout.
func New(inner editor.Surface, poster Poster, timeout time.Duration) *Surface {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Surface{inner: inner, poster: poster, timeout: timeout}
}

// Load blocks for the round trip. A failed round trip loads nothing.
func (s *Surface) Load(content string) (editor.Handle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	out, err := s.poster.PostPreview(ctx, content)
	if err != nil {
		return 0, fmt.Errorf("relay: %w", err)
	}
	return s.inner.Load(out)
}

func (s *Surface) SubscribeError(h editor.Handle, fn func(editor.ScriptError)) {
	s.inner.SubscribeError(h, fn)
}
