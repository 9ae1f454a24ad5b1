package store

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevoker tracks revoked tokens until expiry.
type TokenRevoker interface {
	Revoke(jti string, ttl time.Duration) error
	IsRevoked(jti string) (bool, error)
	// RevokeUser records a cutoff: tokens of userID issued before since are
	// rejected. The cutoff is kept for ttl and only ever moves forward.
	RevokeUser(userID string, since time.Time, ttl time.Duration) error
	RevokedAfter(userID string) (time.Time, error)
}

type userCutoff struct {
	since  time.Time
	expiry time.Time
}

// MemoryTokenRevoker keeps revoked tokens in-memory (single instance only).
type MemoryTokenRevoker struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	users  map[string]userCutoff
}

// NewMemoryTokenRevoker builds an in-memory revoker.
func NewMemoryTokenRevoker() *MemoryTokenRevoker {
	return &MemoryTokenRevoker{
		tokens: make(map[string]time.Time),
		users:  make(map[string]userCutoff),
	}
}

// Revoke marks a token as revoked until its expiry.
func (r *MemoryTokenRevoker) Revoke(jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	r.tokens[jti] = time.Now().Add(ttl)
	r.mu.Unlock()
	return nil
}

// IsRevoked checks if the token is revoked.
func (r *MemoryTokenRevoker) IsRevoked(jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	expiry, ok := r.tokens[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(r.tokens, jti)
		return false, nil
	}
	return true, nil
}

// RevokeUser stores the newest cutoff for the user.
func (r *MemoryTokenRevoker) RevokeUser(userID string, since time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	since = since.UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.users[userID]; ok && cur.since.After(since) && time.Now().Before(cur.expiry) {
		return nil
	}
	r.users[userID] = userCutoff{since: since, expiry: time.Now().Add(ttl)}
	return nil
}

// RevokedAfter returns the user's cutoff, or the zero time.
func (r *MemoryTokenRevoker) RevokedAfter(userID string) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[userID]
	if !ok {
		return time.Time{}, nil
	}
	if time.Now().After(cur.expiry) {
		delete(r.users, userID)
		return time.Time{}, nil
	}
	return cur.since, nil
}

var raiseCutoffScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if cur and tonumber(cur) >= tonumber(ARGV[1]) then
  return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// RedisTokenRevoker stores revoked tokens in Redis with TTL.
type RedisTokenRevoker struct {
	client redis.Cmdable
}

// NewRedisTokenRevoker builds a Redis-backed revoker on a shared client.
func NewRedisTokenRevoker(client redis.Cmdable) *RedisTokenRevoker {
	return &RedisTokenRevoker{client: client}
}

// Revoke marks a token as revoked until expiry.
func (r *RedisTokenRevoker) Revoke(jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return r.client.Set(ctx, revocationKey(jti), "1", ttl).Err()
}

// IsRevoked checks if the token is revoked.
func (r *RedisTokenRevoker) IsRevoked(jti string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	res, err := r.client.Exists(ctx, revocationKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return res > 0, nil
}

// RevokeUser raises the user's cutoff atomically.
func (r *RedisTokenRevoker) RevokeUser(userID string, since time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return raiseCutoffScript.Run(ctx, r.client, []string{userCutoffKey(userID)}, since.UTC().UnixNano(), ttl.Milliseconds()).Err()
}

// RevokedAfter returns the user's cutoff, or the zero time.
func (r *RedisTokenRevoker) RevokedAfter(userID string) (time.Time, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	raw, err := r.client.Get(ctx, userCutoffKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, nanos).UTC(), nil
}

func revocationKey(jti string) string {
	return "jobboard:revoked:" + jti
}

func userCutoffKey(userID string) string {
	return "jobboard:revoked-user:" + userID
}
