package editor

import (
	"sort"
	"time"

	"htmlpad/internal/editor/state"
)

type fakeInput struct {
	text  string
	caret state.Caret
}

func (f *fakeInput) Value() string { return f.text }
func (f *fakeInput) SetValue(text string) {
	f.text = text
	f.caret = state.Caret{Start: len([]rune(text)), End: len([]rune(text))}
}
func (f *fakeInput) Caret() state.Caret   { return f.caret }
func (f *fakeInput) SetCaret(pos int)     { f.caret = state.Caret{Start: pos, End: pos} }
func (f *fakeInput) selectRange(a, b int) { f.caret = state.Caret{Start: a, End: b} }

type fakeGutter struct {
	labels []int
	top    int
}

func (f *fakeGutter) SetLabels(labels []int) { f.labels = labels }
func (f *fakeGutter) SetScrollTop(top int)   { f.top = top }

type fakeSurface struct {
	next   Handle
	loads  []string
	subs   map[Handle]func(ScriptError)
	err    error
	panics any
}

func newFakeSurface() *fakeSurface { return &fakeSurface{subs: map[Handle]func(ScriptError){}} }

func (f *fakeSurface) Load(content string) (Handle, error) {
	if f.panics != nil {
		panic(f.panics)
	}
	if f.err != nil {
		return 0, f.err
	}
	f.next++
	f.loads = append(f.loads, content)
	return f.next, nil
}

func (f *fakeSurface) SubscribeError(h Handle, fn func(ScriptError)) { f.subs[h] = fn }

func (f *fakeSurface) raise(h Handle, e ScriptError) {
	if fn, ok := f.subs[h]; ok {
		fn(e)
	}
}

type fakeBanner struct {
	text    string
	visible bool
	shows   int
}

func (f *fakeBanner) ShowBanner(text string) { f.text, f.visible = text, true; f.shows++ }
func (f *fakeBanner) HideBanner()            { f.text, f.visible = "", false }

type fakePanels struct {
	container int
	right     int
	layout    state.PanelLayout
	sets      int
}

func (f *fakePanels) ContainerWidth() int { return f.container }
func (f *fakePanels) RightWidth() int     { return f.right }
func (f *fakePanels) SetShares(l state.PanelLayout) {
	f.layout = l
	_, f.right = state.Widths(l, f.container)
	f.sets++
}

type fakeConfirm struct {
	answer  bool
	prompts []string
}

func (f *fakeConfirm) Confirm(prompt string, answer func(bool)) {
	f.prompts = append(f.prompts, prompt)
	answer(f.answer)
}

type timer struct {
	at time.Duration
	f  func()
}

// fakeClock runs scheduled callbacks when Advance moves past their deadline.
type fakeClock struct {
	now     time.Duration
	pending []timer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) {
	c.pending = append(c.pending, timer{at: c.now + d, f: f})
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now += d
	sort.SliceStable(c.pending, func(i, j int) bool { return c.pending[i].at < c.pending[j].at })
	var keep []timer
	var due []timer
	for _, t := range c.pending {
		if t.at <= c.now {
			due = append(due, t)
		} else {
			keep = append(keep, t)
		}
	}
	c.pending = keep
	for _, t := range due {
		t.f()
	}
}

type rig struct {
	input   *fakeInput
	gutter  *fakeGutter
	surface *fakeSurface
	banner  *fakeBanner
	panels  *fakePanels
	confirm *fakeConfirm
	clock   *fakeClock
}

func newRig() *rig {
	return &rig{
		input:   &fakeInput{},
		gutter:  &fakeGutter{},
		surface: newFakeSurface(),
		banner:  &fakeBanner{},
		panels:  &fakePanels{container: 1000, right: 500},
		confirm: &fakeConfirm{},
		clock:   &fakeClock{},
	}
}

func (r *rig) handles() Handles {
	return Handles{
		Input:   r.input,
		Gutter:  r.gutter,
		Surface: r.surface,
		Banner:  r.banner,
		Panels:  r.panels,
		Confirm: r.confirm,
		Clock:   r.clock,
	}
}
