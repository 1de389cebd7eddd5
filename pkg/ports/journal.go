package ports

import (
	"context"
	"time"

	"github.com/aretw0/roster/pkg/domain"
)

// JournalEntry records one dispatched action and its visible effect.
type JournalEntry struct {
	Seq     uint64            `json:"seq"`
	Time    time.Time         `json:"time"`
	Action  domain.ActionType `json:"action"`
	Payload any               `json:"payload,omitempty"`
	Diff    *domain.StateDiff `json:"diff,omitempty"`
}

// ActionJournal keeps a bounded history of dispatches for inspection,
// in the spirit of a devtools timeline.
type ActionJournal interface {
	// Append records an entry, evicting the oldest ones beyond capacity.
	Append(ctx context.Context, entry JournalEntry) error

	// Recent returns up to limit entries, oldest first. limit <= 0 means all.
	Recent(ctx context.Context, limit int) ([]JournalEntry, error)

	// Clear drops every entry.
	Clear(ctx context.Context) error
}
