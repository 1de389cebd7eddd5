package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/roster/pkg/ports"
	"github.com/goccy/go-json"
	backend "github.com/redis/go-redis/v9"
)

// DefaultCapacity bounds the journal when no capacity is given.
const DefaultCapacity = 100

// Journal implements ports.ActionJournal using a capped Redis list.
// Several processes may share one journal; entries keep their local Seq.
type Journal struct {
	client   *backend.Client
	prefix   string
	capacity int
	ttl      time.Duration
}

type Option func(*Journal)

// WithTTL expires the journal after ttl without appends.
func WithTTL(ttl time.Duration) Option {
	return func(j *Journal) {
		j.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(j *Journal) {
		j.prefix = prefix
	}
}

// WithCapacity sets the maximum number of kept entries.
func WithCapacity(capacity int) Option {
	return func(j *Journal) {
		if capacity > 0 {
			j.capacity = capacity
		}
	}
}

// New creates a new Redis journal with options.
func New(address, password string, db int, opts ...Option) *Journal {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis journal from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Journal {
	journal := &Journal{
		client:   client,
		prefix:   "roster:journal:",
		capacity: DefaultCapacity,
		ttl:      0, // No expiration by default
	}

	for _, opt := range opts {
		opt(journal)
	}

	return journal
}

func (j *Journal) key() string {
	return j.prefix + "entries"
}

// Append pushes the entry and trims the list to capacity in one transaction.
func (j *Journal) Append(ctx context.Context, entry ports.JournalEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}

	_, err = j.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.RPush(ctx, j.key(), data)
		pipe.LTrim(ctx, j.key(), int64(-j.capacity), -1)
		if j.ttl > 0 {
			pipe.Expire(ctx, j.key(), j.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append to redis: %w", err)
	}
	return nil
}

// Recent returns the newest limit entries, oldest first.
// Payloads come back as generic JSON values.
func (j *Journal) Recent(ctx context.Context, limit int) ([]ports.JournalEntry, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}

	raw, err := j.client.LRange(ctx, j.key(), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read journal from redis: %w", err)
	}

	entries := make([]ports.JournalEntry, 0, len(raw))
	for _, item := range raw {
		var entry ports.JournalEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal journal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Clear removes the journal key.
func (j *Journal) Clear(ctx context.Context) error {
	return j.client.Del(ctx, j.key()).Err()
}

// Close closes the redis client.
func (j *Journal) Close() error {
	return j.client.Close()
}
