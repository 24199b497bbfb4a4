// Package session persists opaque session tokens in Redis. Expiry is
// enforced here through the store TTL, never by the auth service: a
// token lives for the configured fixed window from issuance.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/registropol/registropol-backend/pkg/config"
	redisclient "github.com/registropol/registropol-backend/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

const tokenBytes = 32

// ErrNoSession signals a token with no live session entry (expired,
// destroyed, or never issued).
var ErrNoSession = errors.New("no active session")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(token string) string
}

// Manager handles session token storage and resolution.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Resolver exposes the read-only surface needed by the auth service.
type Resolver interface {
	Resolve(ctx context.Context, token string) (uint, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.TTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
	}, nil
}

// Save persists the token for the owning user with the fixed TTL.
func (m *Manager) Save(ctx context.Context, token string, userID uint) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token is required")
	}
	if userID == 0 {
		return fmt.Errorf("user id is required")
	}
	return m.store.Set(ctx, m.keyer.SessionKey(token), strconv.FormatUint(uint64(userID), 10), m.ttl)
}

// Resolve returns the owning user id for a live token.
func (m *Manager) Resolve(ctx context.Context, token string) (uint, error) {
	if strings.TrimSpace(token) == "" {
		return 0, ErrNoSession
	}
	stored, err := m.store.Get(ctx, m.keyer.SessionKey(token))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return 0, ErrNoSession
		}
		return 0, err
	}
	id, err := strconv.ParseUint(stored, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session entry: %w", err)
	}
	return uint(id), nil
}

// Destroy removes the session entry. Destroying a missing token is not
// an error.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return m.store.Del(ctx, m.keyer.SessionKey(token))
}

// TTL reports the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// NewToken produces an opaque session token.
func NewToken() (string, error) {
	bytes := make([]byte, tokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
