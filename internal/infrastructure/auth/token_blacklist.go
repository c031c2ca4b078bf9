package auth

import (
	"context"
	"sync"
	"time"
)

// TokenBlacklist revokes tokens before they expire. Single tokens are revoked
// by jti on logout; whole sessions are cut by a per-client cutoff on password
// change or account deletion.
type TokenBlacklist interface {
	// AddToBlacklist revokes one token. ttl should be the token's remaining lifetime.
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)

	// InvalidateClientTokens rejects every token issued to the client before
	// now. ttl should cover the longest-lived token that may still be out.
	InvalidateClientTokens(ctx context.Context, clientID string, ttl time.Duration) error
	IsClientTokenInvalidated(ctx context.Context, clientID string, tokenIssuedAt time.Time) (bool, error)
}

// issuedBefore compares whole seconds since iat has no finer precision. A
// token issued in the same second as the cutoff stays valid so a login right
// after a password change works.
func issuedBefore(issuedAt, cutoff time.Time) bool {
	return issuedAt.Unix() < cutoff.Unix()
}

type memEntry struct {
	at      time.Time // cutoff for client entries
	expires time.Time // zero means never
}

func (e memEntry) live(now time.Time) bool {
	return e.expires.IsZero() || now.Before(e.expires)
}

// InMemoryTokenBlacklist keeps revocations in process memory. Revocations are
// lost on restart and not shared between instances.
type InMemoryTokenBlacklist struct {
	mu      sync.Mutex
	jtis    map[string]memEntry
	clients map[string]memEntry
	now     func() time.Time
}

func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		jtis:    make(map[string]memEntry),
		clients: make(map[string]memEntry),
		now:     time.Now,
	}
}

func (b *InMemoryTokenBlacklist) AddToBlacklist(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jtis[jti] = memEntry{expires: b.now().Add(ttl)}
	return nil
}

func (b *InMemoryTokenBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := b.lookup(b.jtis, jti)
	return ok, nil
}

func (b *InMemoryTokenBlacklist) InvalidateClientTokens(_ context.Context, clientID string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	e := memEntry{at: now}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	b.clients[clientID] = e
	return nil
}

func (b *InMemoryTokenBlacklist) IsClientTokenInvalidated(_ context.Context, clientID string, tokenIssuedAt time.Time) (bool, error) {
	e, ok := b.lookup(b.clients, clientID)
	return ok && issuedBefore(tokenIssuedAt, e.at), nil
}

// lookup returns a live entry and drops an expired one.
func (b *InMemoryTokenBlacklist) lookup(m map[string]memEntry, key string) (memEntry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := m[key]
	if !ok {
		return memEntry{}, false
	}
	if !e.live(b.now()) {
		delete(m, key)
		return memEntry{}, false
	}
	return e, true
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
