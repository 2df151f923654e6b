package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/domain"
)

const (
	sessionKeyPrefix = "session:"
	userKeyPrefix    = "session_user:"
)

// SessionCache implements repository.SessionCache using Redis. Snapshots are
// keyed by session token hash; a per-user set of hashes makes it possible to
// evict every session for a user when their subscription changes.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a new Redis-backed session cache.
func NewSessionCache(client *redis.Client, ttl time.Duration) *SessionCache {
	return &SessionCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached user for a token hash, or nil on a miss.
func (c *SessionCache) Get(ctx context.Context, tokenHash string) (*domain.User, error) {
	data, err := c.client.Get(ctx, sessionKeyPrefix+tokenHash).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshal cached user: %w", err)
	}

	return &user, nil
}

// Set stores a user snapshot for a token hash with a TTL.
func (c *SessionCache) Set(ctx context.Context, tokenHash string, user *domain.User, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal cached user: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+tokenHash, data, ttl)
	pipe.SAdd(ctx, userKeyPrefix+user.ID, tokenHash)
	pipe.Expire(ctx, userKeyPrefix+user.ID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}

	return nil
}

// Delete evicts a single session snapshot.
func (c *SessionCache) Delete(ctx context.Context, tokenHash string) error {
	if err := c.client.Del(ctx, sessionKeyPrefix+tokenHash).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}

	return nil
}

// DeleteByUserID evicts every cached snapshot for the given user.
func (c *SessionCache) DeleteByUserID(ctx context.Context, userID string) error {
	hashes, err := c.client.SMembers(ctx, userKeyPrefix+userID).Result()
	if err != nil {
		return fmt.Errorf("redis list user sessions: %w", err)
	}

	keys := make([]string, 0, len(hashes)+1)
	for _, h := range hashes {
		keys = append(keys, sessionKeyPrefix+h)
	}
	keys = append(keys, userKeyPrefix+userID)

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del user sessions: %w", err)
	}

	return nil
}
