package memory

import (
	"context"
	"sync"

	"github.com/aretw0/roster/pkg/ports"
)

// DefaultJournalCapacity bounds the journal when no capacity is given.
const DefaultJournalCapacity = 100

// Journal implements ports.ActionJournal as a ring buffer in memory.
// Safe for concurrent use.
type Journal struct {
	mu      sync.RWMutex
	entries []ports.JournalEntry
	start   int // index of the oldest entry
	size    int
}

// NewJournal creates a journal keeping at most capacity entries.
func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = DefaultJournalCapacity
	}
	return &Journal{
		entries: make([]ports.JournalEntry, capacity),
	}
}

// Append records the entry, overwriting the oldest one when full.
func (j *Journal) Append(ctx context.Context, entry ports.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	capacity := len(j.entries)
	if j.size < capacity {
		j.entries[(j.start+j.size)%capacity] = entry
		j.size++
		return nil
	}
	j.entries[j.start] = entry
	j.start = (j.start + 1) % capacity
	return nil
}

// Recent returns the newest limit entries, oldest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]ports.JournalEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	n := j.size
	if limit > 0 && limit < n {
		n = limit
	}

	// Copy out so callers can't reach the ring
	out := make([]ports.JournalEntry, 0, n)
	capacity := len(j.entries)
	for i := j.size - n; i < j.size; i++ {
		out = append(out, j.entries[(j.start+i)%capacity])
	}
	return out, nil
}

// Clear drops every entry.
func (j *Journal) Clear(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	clear(j.entries)
	j.start, j.size = 0, 0
	return nil
}
