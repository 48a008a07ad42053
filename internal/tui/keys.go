package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Run     key.Binding
	Refresh key.Binding
	Example key.Binding
	Clear   key.Binding
	Indent  key.Binding
	Focus   key.Binding
	Narrow  key.Binding
	Widen   key.Binding
	Diff    key.Binding
	Copy    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Run:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "run")),
		Refresh: key.NewBinding(key.WithKeys("f5"), key.WithHelp("f5", "refresh")),
		Example: key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "example")),
		Clear:   key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
		Indent:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "indent")),
		Focus:   key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2", "focus editor/preview")),
		Narrow:  key.NewBinding(key.WithKeys("alt+left"), key.WithHelp("alt+←", "move split left")),
		Widen:   key.NewBinding(key.WithKeys("alt+right"), key.WithHelp("alt+→", "move split right")),
		Diff:    key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "changes since render")),
		Copy:    key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy buffer")),
		Help:    key.NewBinding(key.WithKeys("f1", "ctrl+g"), key.WithHelp("f1", "help")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q"), key.WithHelp("ctrl+q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Run, k.Example, k.Clear, k.Diff, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Run, k.Refresh, k.Example, k.Clear},
		{k.Indent, k.Focus, k.Narrow, k.Widen},
		{k.Diff, k.Copy, k.Help, k.Quit},
	}
}
