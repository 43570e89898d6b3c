// Package presence tracks which users were recently active.
package presence

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// activeKey is a sorted set of user ids scored by presence expiry in unix
// milliseconds. Members are unique, so a user is counted once however often
// they touch.
const activeKey = "presence:active"

type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// Connect parses a redis:// URL and checks the server is reachable.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Touch(ctx context.Context, userID string, ttl time.Duration) error {
	expiry := s.now().Add(ttl).UnixMilli()
	err := s.client.ZAdd(ctx, activeKey, &redis.Z{Score: float64(expiry), Member: userID}).Err()
	if err != nil {
		return fmt.Errorf("touch presence: %w", err)
	}
	return nil
}

// CountActive drops expired members and counts the rest in one transaction.
func (s *RedisStore) CountActive(ctx context.Context) (int64, error) {
	now := strconv.FormatInt(s.now().UnixMilli(), 10)

	var count *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, activeKey, "-inf", now)
		count = pipe.ZCount(ctx, activeKey, "("+now, "+inf")
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count presence: %w", err)
	}
	return count.Val(), nil
}

type MemoryStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{expires: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStore) Touch(_ context.Context, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expires[userID] = s.now().Add(ttl)
	return nil
}

func (s *MemoryStore) CountActive(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for id, exp := range s.expires {
		if now.Before(exp) {
			n++
		} else {
			delete(s.expires, id)
		}
	}
	return n, nil
}
