// Package netwatch reports network reachability and notifies subscribers
// about transitions between online and offline.
package netwatch

import (
	"sort"
	"sync"
)

// Handler receives the new reachability state.
type Handler func(online bool)

// Monitor is the subscription interface consumed by the auth service.
type Monitor interface {
	Online() bool
	// OnNetworkChange registers h and returns a function that removes it.
	// The returned function is safe to call more than once.
	OnNetworkChange(h Handler) (unsubscribe func())
}

// hub keeps the handler set shared by the monitors.
type hub struct {
	mu       sync.Mutex
	next     int
	handlers map[int]Handler
}

func (h *hub) subscribe(fn Handler) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.handlers == nil {
		h.handlers = make(map[int]Handler)
	}
	id := h.next
	h.next++
	h.handlers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.handlers, id)
			h.mu.Unlock()
		})
	}
}

// notify calls every handler in subscription order, outside the lock.
func (h *hub) notify(online bool) {
	h.mu.Lock()
	ids := make([]int, 0, len(h.handlers))
	for id := range h.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Handler, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, h.handlers[id])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}

func (h *hub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handlers)
}
