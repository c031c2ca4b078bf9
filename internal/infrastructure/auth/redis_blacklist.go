package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const redisBlacklistPrefix = "closet:auth:"

// RedisTokenBlacklist shares revocations between API instances. Revoked jtis
// live under <prefix>jti:<id> and client cutoffs, stored as unix seconds,
// under <prefix>cutoff:<client id>. Both keys expire with the tokens they
// guard.
type RedisTokenBlacklist struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisTokenBlacklist dials Redis and fails when it cannot be pinged.
func NewRedisTokenBlacklist(ctx context.Context, cfg config.RedisConfig) (*RedisTokenBlacklist, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("token blacklist: redis %s: %w", cfg.Addr(), err)
	}
	return NewRedisTokenBlacklistWithClient(rdb), nil
}

// NewRedisTokenBlacklistWithClient wraps an existing client.
func NewRedisTokenBlacklistWithClient(rdb redis.UniversalClient) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{rdb: rdb, prefix: redisBlacklistPrefix}
}

func (b *RedisTokenBlacklist) key(kind, id string) string {
	return b.prefix + kind + ":" + id
}

func (b *RedisTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.rdb.Set(ctx, b.key("jti", jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := b.rdb.Exists(ctx, b.key("jti", jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n == 1, nil
}

func (b *RedisTokenBlacklist) InvalidateClientTokens(ctx context.Context, clientID string, ttl time.Duration) error {
	cutoff := strconv.FormatInt(time.Now().Unix(), 10)
	if err := b.rdb.Set(ctx, b.key("cutoff", clientID), cutoff, ttl).Err(); err != nil {
		return fmt.Errorf("invalidate client %s tokens: %w", clientID, err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsClientTokenInvalidated(ctx context.Context, clientID string, tokenIssuedAt time.Time) (bool, error) {
	cutoff, err := b.rdb.Get(ctx, b.key("cutoff", clientID)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("read client %s cutoff: %w", clientID, err)
	}
	return issuedBefore(tokenIssuedAt, time.Unix(cutoff, 0)), nil
}

func (b *RedisTokenBlacklist) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

func (b *RedisTokenBlacklist) Close() error {
	return b.rdb.Close()
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)
