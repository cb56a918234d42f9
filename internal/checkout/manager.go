package checkout

import (
	"fmt"
	"sync"
	"time"

	"github.com/toolyhq/tooly-storefront/internal/cart"
	"github.com/toolyhq/tooly-storefront/internal/payment"
	"github.com/toolyhq/tooly-storefront/pkg/logger"
)

// Manager hands out one checkout machine per storefront session. Machines
// are created lazily when a session first enters checkout and dropped on
// abandon, completion restart, or idle sweep.
type Manager struct {
	facade    checkoutFacade
	collector payment.Collector
	logg      *logger.Logger

	mu       sync.RWMutex
	machines map[string]*Machine
}

// NewManager builds the per-session checkout registry.
func NewManager(facade checkoutFacade, collector payment.Collector, logg *logger.Logger) (*Manager, error) {
	if facade == nil {
		return nil, fmt.Errorf("checkout facade required")
	}
	if collector == nil {
		return nil, fmt.Errorf("payment collector required")
	}
	return &Manager{
		facade:    facade,
		collector: collector,
		logg:      logg,
		machines:  make(map[string]*Machine),
	}, nil
}

// Get returns the session's machine, creating it bound to the session's cart
// context on first use.
func (m *Manager) Get(sessionID string, cartCtx *cart.Context) (*Machine, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}

	m.mu.RLock()
	existing, ok := m.machines[sessionID]
	m.mu.RUnlock()
	if ok {
		return existing, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.machines[sessionID]; ok {
		return existing, nil
	}
	created, err := NewMachine(m.facade, cartCtx, m.collector, m.logg)
	if err != nil {
		return nil, err
	}
	m.machines[sessionID] = created
	return created, nil
}

// Peek returns the session's machine without creating one.
func (m *Manager) Peek(sessionID string) (*Machine, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	machine, ok := m.machines[sessionID]
	return machine, ok
}

// Abandon drops the session's machine. Order state set so far (customer,
// address, shipping method) stays on the backend order; only the local step
// and form state are discarded.
func (m *Manager) Abandon(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.machines, sessionID)
}

// SweepIdle evicts machines idle past the cutoff and reports how many were
// dropped.
func (m *Manager) SweepIdle(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)

	m.mu.Lock()
	defer m.mu.Unlock()
	dropped := 0
	for sessionID, machine := range m.machines {
		if machine.LastActive().Before(cutoff) {
			delete(m.machines, sessionID)
			dropped++
		}
	}
	return dropped
}

// Len reports how many live machines exist.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.machines)
}
