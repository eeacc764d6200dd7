package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces the keys written by the store.
const DefaultPrefix = "guidepost:tour:"

// Store implements ports.SignalStore using Redis.
// The signal is a single key; its presence means a tour is active.
type Store struct {
	client *backend.Client
	prefix string
	scope  string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration of the signal, so abandoned tours stop restarting.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithScope isolates the signal per user or browser profile.
func WithScope(scope string) Option {
	return func(s *Store) {
		s.scope = scope
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Key returns the Redis key holding the signal.
func (s *Store) Key() string {
	if s.scope == "" {
		return s.prefix + "active"
	}
	return s.prefix + s.scope + ":active"
}

// Active reports whether the signal key exists.
func (s *Store) Active(ctx context.Context) (bool, error) {
	n, err := s.client.Exists(ctx, s.Key()).Result()
	if err != nil {
		return false, fmt.Errorf("redis error reading signal: %w", err)
	}
	return n > 0, nil
}

// SetActive writes the signal key, refreshing its TTL.
func (s *Store) SetActive(ctx context.Context) error {
	val := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.client.Set(ctx, s.Key(), val, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis error setting signal: %w", err)
	}
	return nil
}

// Clear deletes the signal key.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.Key()).Err(); err != nil {
		return fmt.Errorf("redis error clearing signal: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
