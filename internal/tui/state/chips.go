package state

// ChipKind enumerates the status chips shown on the toolbar.
type ChipKind int

const (
	// Stable ordering for display: Modified, Error, Relay, Bridge, Lines, Chars
	MODIFIED ChipKind = iota
	ERROR
	RELAY
	BRIDGE
	LINES
	CHARS
)

// Chip is one status chip. Value carries counters; other chips use 0.
type Chip struct {
	Kind  ChipKind
	Value int
}
