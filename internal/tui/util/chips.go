package util

import (
	"strings"
	"unicode/utf8"

	"htmlpad/internal/tui/state"
)

// ChipInput is what the toolbar knows about the session.
type ChipInput struct {
	Rendered string // source of the latest render
	Current  string // source in the buffer now
	Error    bool   // a banner is showing
	Relay    bool   // renders go through a server
	Bridge   bool   // a browser bridge is attached
	Clients  int    // browser tabs on the bridge
}

// ComputeChips returns chips in a stable order:
//
//	Modified, Error, Relay, Bridge, Lines, Chars
//
// Lines and Chars are always present.
func ComputeChips(in ChipInput) []state.Chip {
	chips := make([]state.Chip, 0, 6)
	if in.Current != in.Rendered {
		chips = append(chips, state.Chip{Kind: state.MODIFIED})
	}
	if in.Error {
		chips = append(chips, state.Chip{Kind: state.ERROR})
	}
	if in.Relay {
		chips = append(chips, state.Chip{Kind: state.RELAY})
	}
	if in.Bridge {
		chips = append(chips, state.Chip{Kind: state.BRIDGE, Value: in.Clients})
	}
	chips = append(chips,
		state.Chip{Kind: state.LINES, Value: strings.Count(in.Current, "\n") + 1},
		state.Chip{Kind: state.CHARS, Value: utf8.RuneCountInString(in.Current)},
	)
	return chips
}
