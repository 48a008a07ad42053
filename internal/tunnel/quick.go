// Package tunnel shares a local server through a cloudflared quick tunnel.
package tunnel

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"time"

	"htmlpad/internal/proc"
)

// Binary is the cloudflared executable looked up on PATH.
var Binary = "cloudflared"

// ErrNoURL means cloudflared never printed a public URL.
var ErrNoURL = errors.New("tunnel: no public URL")

var quickURL = regexp.MustCompile(`https://[a-zA-Z0-9-]+\.trycloudflare\.com`)

// FindURL returns the first quick tunnel URL in line, or "".
func FindURL(line string) string { return quickURL.FindString(line) }

// Quick starts `cloudflared tunnel --url localURL` under sup and waits up to
// timeout for the public URL it announces. The tunnel keeps running until
// the supervisor stops it or ctx ends.
func Quick(ctx context.Context, sup *proc.Supervisor, localURL string, timeout time.Duration) (string, error) {
	bin, err := exec.LookPath(Binary)
	if err != nil {
		return "", fmt.Errorf("tunnel: %w", err)
	}
	found := make(chan string, 1)
	cmd := exec.CommandContext(ctx, bin, "tunnel", "--url", localURL)
	child, err := sup.StartLines("cloudflared", cmd, func(line string) {
		if u := FindURL(line); u != "" {
			select {
			case found <- u:
			default:
			}
		}
	})
	if err != nil {
		return "", fmt.Errorf("start cloudflared: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case u := <-found:
		return u, nil
	case <-child.Exited():
		return "", fmt.Errorf("%w: cloudflared exited", ErrNoURL)
	case <-timer.C:
		return "", fmt.Errorf("%w after %s", ErrNoURL, timeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
