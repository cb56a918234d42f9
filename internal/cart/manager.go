package cart

import (
	"fmt"
	"sync"
	"time"

	"github.com/toolyhq/tooly-storefront/pkg/logger"
)

// Manager hands out one cart context per storefront session, created lazily
// and evicted after idling past the session TTL.
type Manager struct {
	facade orderFacade
	logg   *logger.Logger

	mu       sync.RWMutex
	contexts map[string]*Context
}

// NewManager builds the per-session cart context registry.
func NewManager(facade orderFacade, logg *logger.Logger) (*Manager, error) {
	if facade == nil {
		return nil, fmt.Errorf("order facade required")
	}
	return &Manager{
		facade:   facade,
		logg:     logg,
		contexts: make(map[string]*Context),
	}, nil
}

// Get returns the session's cart context, creating it on first use.
func (m *Manager) Get(sessionID string) (*Context, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}

	m.mu.RLock()
	existing, ok := m.contexts[sessionID]
	m.mu.RUnlock()
	if ok {
		return existing, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.contexts[sessionID]; ok {
		return existing, nil
	}
	created, err := NewContext(m.facade, m.logg)
	if err != nil {
		return nil, err
	}
	m.contexts[sessionID] = created
	return created, nil
}

// Evict drops the session's context, discarding local-only state (drawer
// visibility, last error). The remote order is untouched.
func (m *Manager) Evict(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.contexts, sessionID)
}

// SweepIdle evicts contexts that have not served a call since the cutoff and
// reports how many were dropped.
func (m *Manager) SweepIdle(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)

	m.mu.Lock()
	defer m.mu.Unlock()
	dropped := 0
	for sessionID, ctx := range m.contexts {
		if ctx.LastActive().Before(cutoff) {
			delete(m.contexts, sessionID)
			dropped++
		}
	}
	return dropped
}

// Len reports how many live contexts exist.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.contexts)
}
