package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/roster/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunJournalContract runs a suite of tests to verify that an ActionJournal
// implementation adheres to the defined interface contract.
// capacity is the bound the journal was created with (at least 2).
func RunJournalContract(t *testing.T, journal ActionJournal, capacity int) {
	ctx := context.Background()
	require.GreaterOrEqual(t, capacity, 2, "contract needs a capacity of at least 2")

	entry := func(seq uint64) JournalEntry {
		status := domain.StatusPending
		return JournalEntry{
			Seq:    seq,
			Time:   time.Unix(int64(seq), 0).UTC(),
			Action: domain.ActionFetchPending,
			Diff:   &domain.StateDiff{FetchStatus: &status},
		}
	}

	t.Run("Append and Recent", func(t *testing.T) {
		require.NoError(t, journal.Clear(ctx))

		for seq := uint64(1); seq <= 2; seq++ {
			require.NoError(t, journal.Append(ctx, entry(seq)), "Append should not return error")
		}

		entries, err := journal.Recent(ctx, 0)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, uint64(1), entries[0].Seq, "entries are returned oldest first")
		assert.Equal(t, uint64(2), entries[1].Seq)
		assert.Equal(t, domain.ActionFetchPending, entries[0].Action)
		require.NotNil(t, entries[0].Diff)
		require.NotNil(t, entries[0].Diff.FetchStatus)
		assert.Equal(t, domain.StatusPending, *entries[0].Diff.FetchStatus)
	})

	t.Run("Recent With Limit", func(t *testing.T) {
		require.NoError(t, journal.Clear(ctx))
		for seq := uint64(1); seq <= 2; seq++ {
			require.NoError(t, journal.Append(ctx, entry(seq)))
		}

		entries, err := journal.Recent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, uint64(2), entries[0].Seq, "limit keeps the newest entries")
	})

	t.Run("Capacity", func(t *testing.T) {
		require.NoError(t, journal.Clear(ctx))
		total := capacity + 2
		for seq := 1; seq <= total; seq++ {
			require.NoError(t, journal.Append(ctx, entry(uint64(seq))))
		}

		entries, err := journal.Recent(ctx, 0)
		require.NoError(t, err)
		require.Len(t, entries, capacity)
		assert.Equal(t, uint64(3), entries[0].Seq, "oldest entries are evicted")
		assert.Equal(t, uint64(total), entries[len(entries)-1].Seq)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, journal.Append(ctx, entry(99)))
		require.NoError(t, journal.Clear(ctx))

		entries, err := journal.Recent(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
