package editor

import (
	"time"

	"htmlpad/internal/editor/state"
)

// Handle identifies one load of a Surface. Handles are never reused.
type Handle uint64

// ScriptError is an uncaught error raised by script running inside a
// loaded surface.
type ScriptError struct {
	Message string
	Line    int
	Column  int
	Source  string
}

// Surface is an isolated rendering context. Load replaces the whole content.
// SubscribeError delivers uncaught script errors raised by that load; the
// subscription ends when the next Load happens. Implementations suppress the
// default propagation of errors they deliver.
type Surface interface {
	Load(content string) (Handle, error)
	SubscribeError(h Handle, fn func(ScriptError))
}

// TextInput is the editable source pane.
type TextInput interface {
	Value() string
	SetValue(text string)
	Caret() state.Caret
	SetCaret(pos int)
}

// Gutter shows line labels next to the input.
type Gutter interface {
	SetLabels(labels []int)
	SetScrollTop(top int)
}

// BannerView displays the single transient error message.
type BannerView interface {
	ShowBanner(text string)
	HideBanner()
}

// Panels exposes the two resizable panels and their container.
type Panels interface {
	ContainerWidth() int
	RightWidth() int
	SetShares(layout state.PanelLayout)
}

// Confirmer asks a yes/no question and reports the answer through answer,
// possibly later.
type Confirmer interface {
	Confirm(prompt string, answer func(ok bool))
}

// Scheduler runs f once after d on the UI loop.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// Handles bundles every UI surface a session talks to. Front ends build one
// and pass it to NewSession; components receive the handles they need.
type Handles struct {
	Input   TextInput
	Gutter  Gutter
	Surface Surface
	Banner  BannerView
	Panels  Panels
	Confirm Confirmer
	Clock   Scheduler
}
