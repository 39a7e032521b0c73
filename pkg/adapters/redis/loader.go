package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the loader reads or writes.
const DefaultPrefix = "genson:schema:"

// Loader implements ports.SchemaLoader using Redis.
// Definitions live as JSON strings under <prefix>node:<key>; a sorted set
// at <prefix>index keeps their document order.
type Loader struct {
	client      *backend.Client
	prefix      string
	lockTTL     time.Duration
	readTimeout time.Duration
}

// Option configures a Loader.
type Option func(*Loader)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(l *Loader) {
		l.prefix = prefix
	}
}

// WithLockTTL bounds how long a Publish may hold the schema lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(l *Loader) {
		l.lockTTL = ttl
	}
}

// WithReadTimeout bounds each GetNode/ListNodes round trip.
func WithReadTimeout(d time.Duration) Option {
	return func(l *Loader) {
		l.readTimeout = d
	}
}

// New creates a new Redis loader with options.
func New(address, password string, db int, opts ...Option) *Loader {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis loader from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Loader {
	l := &Loader{
		client:      client,
		prefix:      DefaultPrefix,
		lockTTL:     30 * time.Second,
		readTimeout: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *Loader) key(node string) string {
	return l.prefix + "node:" + node
}

func (l *Loader) indexKey() string {
	return l.prefix + "index"
}

func (l *Loader) readContext() (context.Context, context.CancelFunc) {
	if l.readTimeout <= 0 {
		return context.Background(), func() {}
	}
	return context.WithTimeout(context.Background(), l.readTimeout)
}

// GetNode retrieves the raw JSON definition of a node.
func (l *Loader) GetNode(key string) ([]byte, error) {
	ctx, cancel := l.readContext()
	defer cancel()

	val, err := l.client.Get(ctx, l.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, key)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// ListNodes returns the published keys in document order.
func (l *Loader) ListNodes() ([]string, error) {
	ctx, cancel := l.readContext()
	defer cancel()

	keys, err := l.client.ZRange(ctx, l.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	return keys, nil
}

// Publish replaces the stored schema with every definition src serves.
// Concurrent publishers are serialized through a lock on the prefix.
func (l *Loader) Publish(ctx context.Context, src ports.SchemaLoader) (int, error) {
	keys, err := src.ListNodes()
	if err != nil {
		return 0, fmt.Errorf("listing source nodes: %w", err)
	}

	defs := make([][]byte, len(keys))
	for i, key := range keys {
		if defs[i], err = src.GetNode(key); err != nil {
			return 0, fmt.Errorf("loading source node %q: %w", key, err)
		}
	}

	unlock, err := newLocker(l.client, l.prefix).Lock(ctx, "publish", l.lockTTL)
	if err != nil {
		return 0, err
	}
	defer unlock(context.WithoutCancel(ctx))

	// 1. Find stale definitions
	previous, err := l.client.ZRange(ctx, l.indexKey(), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read index: %w", err)
	}
	current := make(map[string]bool, len(keys))
	for _, key := range keys {
		current[key] = true
	}

	// 2. Replace definitions and index atomically
	pipe := l.client.TxPipeline()
	for _, key := range previous {
		if !current[key] {
			pipe.Del(ctx, l.key(key))
		}
	}
	pipe.Del(ctx, l.indexKey())
	for i, key := range keys {
		pipe.Set(ctx, l.key(key), defs[i], 0)
		pipe.ZAdd(ctx, l.indexKey(), backend.Z{Score: float64(i), Member: key})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to publish to redis: %w", err)
	}
	return len(keys), nil
}

// Close closes the redis client.
func (l *Loader) Close() error {
	return l.client.Close()
}
