package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/toolyhq/tooly-storefront/pkg/config"
	redisclient "github.com/toolyhq/tooly-storefront/pkg/redis"
)

// ErrNoToken reports that no backend token is stored for the session yet.
var ErrNoToken = errors.New("no backend token for session")

type tokenStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

type tokenKeyer interface {
	SessionTokenKey(sessionID string) string
}

// Manager maps storefront session ids to the commerce backend's order-session
// token. The token is the only credential binding RPC calls to one in-progress
// order, so it is stored server-side and never handed to the browser.
type Manager struct {
	store tokenStore
	keyer tokenKeyer
	ttl   time.Duration
}

// TokenStore is the surface the RPC client needs to forward and capture
// backend session tokens.
type TokenStore interface {
	BackendToken(ctx context.Context, sessionID string) (string, error)
	SetBackendToken(ctx context.Context, sessionID, token string) error
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{
		store: client,
		keyer: client,
		ttl:   cfg.TTL,
	}, nil
}

// NewSessionID produces the opaque identifier set in the storefront cookie.
func NewSessionID() string {
	return uuid.NewString()
}

// BackendToken returns the stored backend token, or ErrNoToken when the
// session has not talked to the backend yet.
func (m *Manager) BackendToken(ctx context.Context, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", fmt.Errorf("session id is required")
	}
	token, err := m.store.Get(ctx, m.keyer.SessionTokenKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", ErrNoToken
		}
		return "", err
	}
	return token, nil
}

// SetBackendToken stores the token the backend handed back, refreshing the TTL.
func (m *Manager) SetBackendToken(ctx context.Context, sessionID, token string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("backend token is required")
	}
	return m.store.Set(ctx, m.keyer.SessionTokenKey(sessionID), token, m.ttl)
}

// Touch extends the session's TTL on activity without rewriting the token.
func (m *Manager) Touch(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Expire(ctx, m.keyer.SessionTokenKey(sessionID), m.ttl)
}

// Revoke drops the backend token mapping for the session.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Del(ctx, m.keyer.SessionTokenKey(sessionID))
}
