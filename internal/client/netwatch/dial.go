package netwatch

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

// DialFunc opens a connection; it matches net.Dialer.DialContext.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// DialMonitor considers the network reachable while a TCP connection to
// addr can be established.
type DialMonitor struct {
	hub
	addr     string
	interval time.Duration
	timeout  time.Duration
	dial     DialFunc
	log      logging.Logger

	mu     sync.RWMutex
	online bool
}

var _ Monitor = (*DialMonitor)(nil)

type DialOption func(*DialMonitor)

// WithDialer replaces the dial function.
func WithDialer(d DialFunc) DialOption {
	return func(m *DialMonitor) { m.dial = d }
}

// WithDialTimeout bounds each connection attempt.
func WithDialTimeout(d time.Duration) DialOption {
	return func(m *DialMonitor) { m.timeout = d }
}

func NewDialMonitor(addr string, interval time.Duration, log logging.Logger, opts ...DialOption) *DialMonitor {
	var d net.Dialer
	m := &DialMonitor{
		addr:     addr,
		interval: interval,
		timeout:  2 * time.Second,
		dial:     d.DialContext,
		log:      log,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *DialMonitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

func (m *DialMonitor) OnNetworkChange(h Handler) func() {
	return m.subscribe(h)
}

// Check dials once, records the result and notifies on a transition.
func (m *DialMonitor) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	online := true
	conn, err := m.dial(ctx, "tcp", m.addr)
	if err != nil {
		online = false
		m.log.Debug(ctx, "network check failed", "addr", m.addr, "error", err)
	} else {
		_ = conn.Close()
	}

	m.mu.Lock()
	changed := m.online != online
	m.online = online
	m.mu.Unlock()

	if changed {
		m.log.Info(ctx, "network state changed", "online", online)
		m.notify(online)
	}
	return online
}

// Run checks reachability every interval until ctx is done.
func (m *DialMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}
