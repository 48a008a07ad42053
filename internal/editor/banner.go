package editor

import "time"

// DefaultBannerTTL is how long an error message stays visible.
const DefaultBannerTTL = 5 * time.Second

// Banner shows one error message at a time and hides it after a TTL.
// Every Show bumps a generation counter; a pending auto-clear only fires if
// no newer message has been shown since it was scheduled.
type Banner struct {
	view    BannerView
	clock   Scheduler
	ttl     time.Duration
	gen     uint64
	text    string
	visible bool
}

// NewBanner returns a banner that draws into view and schedules its
// auto-clear on clock.
func NewBanner(view BannerView, clock Scheduler, ttl time.Duration) *Banner {
	if ttl <= 0 {
		ttl = DefaultBannerTTL
	}
	return &Banner{view: view, clock: clock, ttl: ttl}
}

// Show replaces the visible message.
func (b *Banner) Show(text string) {
	b.gen++
	gen := b.gen
	b.text = text
	b.visible = true
	b.view.ShowBanner(text)
	b.clock.AfterFunc(b.ttl, func() {
		if b.gen != gen {
			return
		}
		b.Hide()
	})
}

// Hide clears the message immediately.
func (b *Banner) Hide() {
	if !b.visible {
		return
	}
	b.visible = false
	b.text = ""
	b.view.HideBanner()
}

// SetTTL changes the display window for subsequent messages.
func (b *Banner) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		b.ttl = ttl
	}
}

// Text returns the visible message, or "" when hidden.
func (b *Banner) Text() string { return b.text }

// Visible reports whether a message is showing.
func (b *Banner) Visible() bool { return b.visible }
