package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrCacheMiss is returned when no entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// Service is a thin redis-backed cache for analysis responses. It is a
// pure collaborator: the engine never depends on it, and when redis is
// unreachable every call degrades to a no-op miss.
type Service struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// New connects to redis and pings it once; a failed ping returns a
// degraded (nil-client) service rather than an error.
func New(addr, password string, db, ttlSecs int, logger zerolog.Logger) *Service {
	s := &Service{
		ttl:    time.Duration(ttlSecs) * time.Second,
		logger: logger.With().Str("component", "cache").Logger(),
	}
	if s.ttl <= 0 {
		s.ttl = 5 * time.Minute
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		s.logger.Warn().Err(err).Str("addr", addr).Msg("redis unavailable; cache disabled")
		return s
	}
	s.client = client
	return s
}

// Key builds the cache key for one symbol's analysis as of its latest
// bar date.
func Key(symbol, lastBarDate string) string {
	return fmt.Sprintf("analysis:%s:%s", symbol, lastBarDate)
}

// Get unmarshals a cached value into dest.
func (s *Service) Get(ctx context.Context, key string, dest interface{}) error {
	if s.client == nil {
		return ErrCacheMiss
	}
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	return json.Unmarshal(data, dest)
}

// Set stores a value under the service TTL. Failures are logged, not
// propagated; the cache is best-effort.
func (s *Service) Set(ctx context.Context, key string, value interface{}) {
	if s.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to marshal cache value")
		return
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store cache value")
	}
}

// Close releases the redis connection.
func (s *Service) Close() {
	if s.client != nil {
		_ = s.client.Close()
	}
}
