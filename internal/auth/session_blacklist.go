package auth

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sachin-security/sachin-security-sub000/internal/config"
)

// Revoker is a denylist of token ids consulted on every verification.
type Revoker interface {
	// Revoke denies the token id until exp.
	Revoke(ctx context.Context, jti string, exp time.Time) error
	// IsRevoked checks if the given token id is denied.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NewRevoker builds the revocation list named by kind.
func NewRevoker(ctx context.Context, kind string, rc config.RedisConfig) (Revoker, error) {
	switch kind {
	case config.RevocationNone, "":
		return NoopRevoker{}, nil
	case config.RevocationMemory:
		return NewInMemoryBlacklistStore(), nil
	case config.RevocationRedis:
		client := redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedisBlacklistStore(client), nil
	default:
		return nil, fmt.Errorf("unknown revocation store %q", kind)
	}
}

// CloseRevoker releases revokers that own a goroutine or a client.
func CloseRevoker(r Revoker) error {
	if c, ok := r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// NoopRevoker never revokes: a token stays valid until it expires.
type NoopRevoker struct{}

// Revoke implements Revoker.
func (NoopRevoker) Revoke(context.Context, string, time.Time) error { return nil }

// IsRevoked implements Revoker.
func (NoopRevoker) IsRevoked(context.Context, string) (bool, error) { return false, nil }

// InMemoryBlacklistStore keeps revoked ids in process memory.
type InMemoryBlacklistStore struct {
	blacklist map[string]time.Time
	mu        sync.RWMutex

	stop      chan struct{}
	stopOnce  sync.Once
	sweeperWG sync.WaitGroup
}

// NewInMemoryBlacklistStore sweeps expired entries every five minutes until Close.
func NewInMemoryBlacklistStore() *InMemoryBlacklistStore {
	return newInMemoryBlacklistStore(5 * time.Minute)
}

func newInMemoryBlacklistStore(interval time.Duration) *InMemoryBlacklistStore {
	store := &InMemoryBlacklistStore{
		blacklist: make(map[string]time.Time),
		stop:      make(chan struct{}),
	}
	store.sweeperWG.Add(1)
	go store.sweep(interval)
	return store
}

func (s *InMemoryBlacklistStore) sweep(interval time.Duration) {
	defer s.sweeperWG.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.CleanUpExpired()
		}
	}
}

// Close stops the sweeper and waits for it to exit. It is safe to call more than once.
func (s *InMemoryBlacklistStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.sweeperWG.Wait()
	return nil
}

// CleanUpExpired drops entries whose token has expired anyway.
func (s *InMemoryBlacklistStore) CleanUpExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for jti, exp := range s.blacklist {
		if exp.Before(now) {
			delete(s.blacklist, jti)
		}
	}
}

// IsRevoked implements Revoker.
func (s *InMemoryBlacklistStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.blacklist[jti]
	return exists, nil
}

// Revoke implements Revoker.
func (s *InMemoryBlacklistStore) Revoke(_ context.Context, jti string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blacklist[jti] = exp
	return nil
}

// RedisBlacklistStore shares revoked ids between replicas; keys expire with the token.
type RedisBlacklistStore struct {
	client *redis.Client
	prefix string
}

// NewRedisBlacklistStore uses client for storage.
func NewRedisBlacklistStore(client *redis.Client) *RedisBlacklistStore {
	return &RedisBlacklistStore{client: client, prefix: "auth:revoked:"}
}

// Revoke implements Revoker.
func (s *RedisBlacklistStore) Revoke(ctx context.Context, jti string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.prefix+jti, 1, ttl).Err()
}

// Close closes the redis client.
func (s *RedisBlacklistStore) Close() error {
	return s.client.Close()
}

// IsRevoked implements Revoker.
func (s *RedisBlacklistStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}
