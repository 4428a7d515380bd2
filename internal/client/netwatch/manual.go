package netwatch

import "sync"

// Manual is a Monitor whose state is set explicitly.
type Manual struct {
	hub
	mu     sync.RWMutex
	online bool
}

var _ Monitor = (*Manual)(nil)

func NewManual(online bool) *Manual {
	return &Manual{online: online}
}

func (m *Manual) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

func (m *Manual) OnNetworkChange(h Handler) func() {
	return m.subscribe(h)
}

// Set changes the state and notifies subscribers if it actually changed.
func (m *Manual) Set(online bool) {
	m.mu.Lock()
	changed := m.online != online
	m.online = online
	m.mu.Unlock()

	if changed {
		m.notify(online)
	}
}

// Subscribers reports how many handlers are registered.
func (m *Manual) Subscribers() int {
	return m.size()
}
