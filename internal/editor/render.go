package editor

import (
	"fmt"
	"log/slog"

	"htmlpad/internal/editor/state"
)

// Renderer pushes source text into a Surface and turns failures into banner
// messages. Nothing it does propagates an error or panic to its caller.
type Renderer struct {
	surface Surface
	banner  *Banner
	log     *slog.Logger

	current Handle
	loaded  bool
	last    state.RenderResult
}

// NewRenderer wires a renderer to its surface and banner.
func NewRenderer(surface Surface, banner *Banner, log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Renderer{surface: surface, banner: banner, log: log}
}

// Render replaces the surface content with source.
func (r *Renderer) Render(source string) (res state.RenderResult) {
	defer func() {
		if p := recover(); p != nil {
			res = r.setupFailed(fmt.Errorf("%v", p))
		}
	}()

	r.banner.Hide()

	h, err := r.surface.Load(source)
	if err != nil {
		return r.setupFailed(err)
	}
	r.current = h
	r.loaded = true
	r.surface.SubscribeError(h, func(e ScriptError) { r.scriptFailed(h, e) })

	r.last = state.RenderResult{Succeeded: true}
	r.log.Debug("rendered", "handle", uint64(h), "bytes", len(source))
	return r.last
}

// Last returns the most recent result, including a runtime script error of
// the current load.
func (r *Renderer) Last() state.RenderResult { return r.last }

// Current returns the handle of the latest successful load.
func (r *Renderer) Current() (Handle, bool) { return r.current, r.loaded }

func (r *Renderer) setupFailed(err error) state.RenderResult {
	msg := RenderSetupMessage(err)
	r.log.Warn("render failed", "error", err)
	r.banner.Show(msg)
	r.last = state.RenderResult{ErrorText: msg}
	return r.last
}

func (r *Renderer) scriptFailed(h Handle, e ScriptError) {
	if !r.loaded || h != r.current {
		return
	}
	msg := ScriptErrorMessage(e)
	r.log.Info("script error", "handle", uint64(h), "message", e.Message, "line", e.Line)
	r.banner.Show(msg)
	r.last = state.RenderResult{ErrorText: msg}
}

// RenderSetupMessage formats a failure to load content.
func RenderSetupMessage(err error) string {
	return "Error rendering HTML: " + err.Error()
}

// ScriptErrorMessage formats an uncaught script error.
func ScriptErrorMessage(e ScriptError) string {
	return fmt.Sprintf("JavaScript error: %s at line %d", e.Message, e.Line)
}
