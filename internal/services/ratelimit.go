package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pixelcraft-backend/internal/apperr"
	"github.com/yungbote/pixelcraft-backend/internal/logger"
)

// RateLimitConfig is one endpoint class's window. Values come from env, not
// from the limiter itself.
type RateLimitConfig struct {
	WindowSeconds int
	MaxRequests   int
}

type Quota struct {
	Limit        int `json:"limit"`
	Remaining    int `json:"remaining"`
	ResetSeconds int `json:"reset"`
}

// CounterStore is the shared keyed counter behind the limiter. Incr must be
// atomic: two concurrent calls for the same key must observe distinct counts.
// The window expiry is anchored to the first increment of the key.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
	Get(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// RateLimiter tracks fixed per-user windows per endpoint class.
type RateLimiter interface {
	// Consume takes one slot, or returns ErrThrottled with the quota
	// describing when the window resets.
	Consume(ctx context.Context, userID uuid.UUID, class string) (Quota, error)
	// Remaining is a pure read for UI display; it never consumes quota.
	Remaining(ctx context.Context, userID uuid.UUID, class string) (Quota, error)
}

type rateLimiter struct {
	log     *logger.Logger
	store   CounterStore
	configs map[string]RateLimitConfig
}

func NewRateLimiter(log *logger.Logger, store CounterStore, configs map[string]RateLimitConfig) RateLimiter {
	return &rateLimiter{
		log:     log.With("service", "RateLimiter"),
		store:   store,
		configs: configs,
	}
}

func (rl *rateLimiter) config(class string) (RateLimitConfig, error) {
	cfg, ok := rl.configs[class]
	if !ok {
		return RateLimitConfig{}, fmt.Errorf("%w: unknown rate limit class %q", apperr.ErrInvalidArgument, class)
	}
	return cfg, nil
}

func counterKey(userID uuid.UUID, class string) string {
	return fmt.Sprintf("ratelimit:%s:%s", class, userID)
}

func (rl *rateLimiter) Consume(ctx context.Context, userID uuid.UUID, class string) (Quota, error) {
	cfg, err := rl.config(class)
	if err != nil {
		return Quota{}, err
	}
	window := time.Duration(cfg.WindowSeconds) * time.Second
	count, ttl, err := rl.store.Incr(ctx, counterKey(userID, class), window)
	if err != nil {
		return Quota{}, fmt.Errorf("rate limit counter incr: %w", err)
	}
	quota := Quota{
		Limit:        cfg.MaxRequests,
		Remaining:    cfg.MaxRequests - int(count),
		ResetSeconds: int(ttl / time.Second),
	}
	if quota.Remaining < 0 {
		quota.Remaining = 0
	}
	if count > int64(cfg.MaxRequests) {
		return quota, apperr.ErrThrottled
	}
	return quota, nil
}

func (rl *rateLimiter) Remaining(ctx context.Context, userID uuid.UUID, class string) (Quota, error) {
	cfg, err := rl.config(class)
	if err != nil {
		return Quota{}, err
	}
	window := time.Duration(cfg.WindowSeconds) * time.Second
	count, ttl, err := rl.store.Get(ctx, counterKey(userID, class), window)
	if err != nil {
		return Quota{}, fmt.Errorf("rate limit counter read: %w", err)
	}
	remaining := cfg.MaxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Quota{
		Limit:        cfg.MaxRequests,
		Remaining:    remaining,
		ResetSeconds: int(ttl / time.Second),
	}, nil
}

// ---- Redis-backed store ----

// redisCounterStore keys live in a shared redis so the count is correct
// across instances. INCR is atomic; the expiry is set only when the key is
// first created (NX), anchoring the window to the first request.
type redisCounterStore struct {
	rdb *goredis.Client
}

func NewRedisCounterStore(log *logger.Logger, addr string) (CounterStore, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("Rate limit counters backed by redis", "addr", addr)
	return &redisCounterStore{rdb: rdb}, nil
}

func (s *redisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	return incr.Val(), ttl.Val(), nil
}

func (s *redisCounterStore) Get(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := s.rdb.Get(ctx, key).Int64()
	if err == goredis.Nil {
		return 0, window, nil
	}
	if err != nil {
		return 0, 0, err
	}
	ttl, err := s.rdb.PTTL(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if ttl < 0 {
		ttl = window
	}
	return count, ttl, nil
}

// ---- In-memory store ----

// memoryCounterStore is the single-process fallback used when REDIS_ADDR is
// unset, and the store the tests drive with an injected clock. Not correct
// under horizontal scaling.
type memoryCounterStore struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string]*memoryWindow
}

type memoryWindow struct {
	count     int64
	expiresAt time.Time
}

func NewMemoryCounterStore(now func() time.Time) CounterStore {
	if now == nil {
		now = time.Now
	}
	return &memoryCounterStore{
		now:     now,
		windows: make(map[string]*memoryWindow),
	}
}

func (s *memoryCounterStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	w, ok := s.windows[key]
	if !ok || !w.expiresAt.After(now) {
		w = &memoryWindow{expiresAt: now.Add(window)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.expiresAt.Sub(now), nil
}

func (s *memoryCounterStore) Get(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	w, ok := s.windows[key]
	if !ok || !w.expiresAt.After(now) {
		return 0, window, nil
	}
	return w.count, w.expiresAt.Sub(now), nil
}
