package search

import "sync"

// Navigator is the address bar the controller writes to
type Navigator interface {
	Current() string
	Push(location string) bool
}

// History is an in-memory browser history: a list of locations with a cursor.
// Pushing truncates any forward entries.
type History struct {
	mu      sync.Mutex
	entries []string
	cursor  int
}

// NewHistory starts a history at location
func NewHistory(location string) *History {
	if location == "" {
		location = "/jobs"
	}
	return &History{entries: []string{location}}
}

// Current returns the active location
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cursor]
}

// Push navigates to location. Pushing the current location is a no-op.
func (h *History) Push(location string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.entries[h.cursor] == location {
		return false
	}
	h.entries = append(h.entries[:h.cursor+1], location)
	h.cursor++
	return true
}

// Replace overwrites the active location without adding an entry
func (h *History) Replace(location string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.cursor] = location
}

// Back moves one entry back and returns the new location
func (h *History) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor == 0 {
		return h.entries[h.cursor], false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Forward moves one entry forward and returns the new location
func (h *History) Forward() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor == len(h.entries)-1 {
		return h.entries[h.cursor], false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// Len is the number of entries
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
