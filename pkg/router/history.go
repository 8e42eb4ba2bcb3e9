package router

import "sync"

// MemoryHistory is an in-memory History. Pushing after going back discards
// the forward entries, as a browser does. The zero value is an empty history.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []NavigationRequest

	// n is the 1-based position of the current entry; 0 when empty.
	n int
}

// NewMemoryHistory creates an empty history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

// Push implements History.
func (h *MemoryHistory) Push(req NavigationRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries[:h.n], req)
	h.n++
}

// Replace implements History. On an empty history it behaves like Push.
func (h *MemoryHistory) Replace(req NavigationRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.n == 0 {
		h.entries = append(h.entries[:0], req)
		h.n = 1
		return
	}
	h.entries[h.n-1] = req
}

// Go implements History.
func (h *MemoryHistory) Go(delta int) (NavigationRequest, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.n + delta
	if h.n == 0 || next < 1 || next > len(h.entries) {
		return NavigationRequest{}, false
	}
	h.n = next
	return h.entries[h.n-1], true
}

// Location implements History.
func (h *MemoryHistory) Location() (NavigationRequest, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.n == 0 {
		return NavigationRequest{}, false
	}
	return h.entries[h.n-1], true
}

// Len returns the number of entries, including forward ones.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
