// Package tui provides the Bubble Tea front end for Emberfall: a
// scrolling transcript viewport, styled output, a status bar, and an
// input line with command history.
package tui

// History holds submitted commands for Up/Down recall.
type History struct {
	entries []string
	limit   int
	cursor  int // -1 when not navigating, otherwise an index into entries
}

// NewHistory creates a history buffer keeping at most limit entries.
func NewHistory(limit int) *History {
	return &History{
		entries: make([]string, 0, limit),
		limit:   limit,
		cursor:  -1,
	}
}

// Push records a command. Consecutive duplicates are skipped; the
// oldest entry is dropped once the buffer is full.
func (h *History) Push(cmd string) {
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	if len(h.entries) == h.limit {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:h.limit-1]
	}
	h.entries = append(h.entries, cmd)
}

// Prev returns the previous (older) entry, staying on the oldest once
// reached. Returns ("", false) if the history is empty.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next returns the next (newer) entry. Past the most recent one it
// returns ("", false) and the cursor resets to fresh input.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	if h.cursor+1 >= len(h.entries) {
		h.cursor = -1
		return "", false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// ResetCursor returns the cursor to the "not navigating" state.
func (h *History) ResetCursor() {
	h.cursor = -1
}
