// Package nav keeps the file browser's back/forward history.
package nav

import (
	"github.com/justyntemme/deskshell/internal/debug"
	"github.com/justyntemme/deskshell/internal/vfs"
)

// DefaultLimit bounds how many locations are remembered.
const DefaultLimit = 100

// History is an index-addressed list of visited locations. Back and Forward
// only move the index; Visit truncates the forward entries before appending.
type History struct {
	entries []vfs.Location
	index   int
	limit   int
}

// New creates a history positioned at start. A limit below 1 uses
// DefaultLimit.
func New(start vfs.Location, limit int) *History {
	if limit < 1 {
		limit = DefaultLimit
	}
	h := &History{limit: limit}
	h.Reset(start)
	return h
}

// Reset discards everything and starts over at loc.
func (h *History) Reset(loc vfs.Location) {
	h.entries = []vfs.Location{loc}
	h.index = 0
}

// Current returns the location at the index.
func (h *History) Current() vfs.Location {
	return h.entries[h.index]
}

// Visit records a new location. Visiting the current location is a no-op.
func (h *History) Visit(loc vfs.Location) {
	if loc.Equal(h.Current()) {
		return
	}
	h.entries = append(h.entries[:h.index+1], loc)
	h.index = len(h.entries) - 1

	if excess := len(h.entries) - h.limit; excess > 0 {
		h.entries = append([]vfs.Location(nil), h.entries[excess:]...)
		h.index -= excess
	}
	debug.Log(debug.NAV, "visit %s (index=%d len=%d)", loc, h.index, len(h.entries))
}

// Back moves one step back. It reports false at the oldest entry.
func (h *History) Back() (vfs.Location, bool) {
	if !h.CanGoBack() {
		return h.Current(), false
	}
	h.index--
	return h.Current(), true
}

// Forward moves one step forward. It reports false at the newest entry.
func (h *History) Forward() (vfs.Location, bool) {
	if !h.CanGoForward() {
		return h.Current(), false
	}
	h.index++
	return h.Current(), true
}

func (h *History) CanGoBack() bool {
	return h.index > 0
}

func (h *History) CanGoForward() bool {
	return h.index < len(h.entries)-1
}

// Len returns the number of remembered entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Limit returns the size cap.
func (h *History) Limit() int {
	return h.limit
}
