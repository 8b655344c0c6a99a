package client

import "sync"

// One-shot signals passed from one screen to the next.
const (
	SignalReturnAfterCustomer = "returnAfterCustomer"
	SignalFormSuccess         = "formSuccess"
)

// Handoff holds values that are consumed by the first reader.
type Handoff struct {
	mu     sync.Mutex
	values map[string]string
}

func NewHandoff() *Handoff {
	return &Handoff{values: make(map[string]string)}
}

func (h *Handoff) Set(key, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.values[key] = value
}

// Take returns the value under key and removes it.
func (h *Handoff) Take(key string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.values[key]
	if ok {
		delete(h.values, key)
	}
	return v, ok
}

// Peek returns the value under key without consuming it.
func (h *Handoff) Peek(key string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.values[key]
	return v, ok
}
