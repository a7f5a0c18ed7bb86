package overdue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "tracker/pkg/domain"
)

func TestLedger_MarkIfDue(t *testing.T) {
	ledger := NewLedger(0)
	taskID := id.NewTaskID()
	today := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)

	assert.True(t, ledger.MarkIfDue(taskID, today), "first mark of the day wins")
	assert.False(t, ledger.MarkIfDue(taskID, today), "second mark the same day loses")

	// A later wall-clock time on the same calendar day is still the same day.
	assert.False(t, ledger.MarkIfDue(taskID, today.Add(8*time.Hour)))

	// The next day is due again.
	assert.True(t, ledger.MarkIfDue(taskID, today.Add(24*time.Hour)))
}

func TestLedger_MarkIfDue_TimezoneNormalization(t *testing.T) {
	ledger := NewLedger(0)
	taskID := id.NewTaskID()

	est := time.FixedZone("EST", -5*60*60)
	morningUTC := time.Date(2026, 8, 31, 2, 0, 0, 0, time.UTC)
	eveningEST := time.Date(2026, 8, 30, 23, 0, 0, 0, est) // 2026-08-31 04:00 UTC

	assert.True(t, ledger.MarkIfDue(taskID, morningUTC))
	assert.False(t, ledger.MarkIfDue(taskID, eveningEST), "same UTC date regardless of zone")
}

func TestLedger_MarkIfDue_ConcurrentClaims(t *testing.T) {
	ledger := NewLedger(0)
	taskID := id.NewTaskID()
	today := time.Now()

	var wg sync.WaitGroup
	wins := make(chan struct{}, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ledger.MarkIfDue(taskID, today) {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count, "exactly one claimant per task-day")
}

func TestLedger_LastNotified(t *testing.T) {
	ledger := NewLedger(0)
	taskID := id.NewTaskID()

	_, ok := ledger.LastNotified(taskID)
	assert.False(t, ok)

	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	require.True(t, ledger.MarkIfDue(taskID, now))

	last, ok := ledger.LastNotified(taskID)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), last)
}

func TestLedger_Compact(t *testing.T) {
	ledger := NewLedger(3)
	today := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	yesterday := today.Add(-24 * time.Hour)

	stale := []id.TaskID{id.NewTaskID(), id.NewTaskID(), id.NewTaskID()}
	for _, taskID := range stale {
		require.True(t, ledger.MarkIfDue(taskID, yesterday))
	}
	fresh := id.NewTaskID()
	require.True(t, ledger.MarkIfDue(fresh, today))

	ledger.Compact(today)

	assert.Equal(t, 1, ledger.Len(), "only today's entries survive compaction")
	_, ok := ledger.LastNotified(fresh)
	assert.True(t, ok)
}

func TestLedger_CompactBelowBoundIsNoop(t *testing.T) {
	ledger := NewLedger(10)
	today := time.Now()
	yesterday := today.Add(-24 * time.Hour)

	taskID := id.NewTaskID()
	require.True(t, ledger.MarkIfDue(taskID, yesterday))

	ledger.Compact(today)

	assert.Equal(t, 1, ledger.Len(), "compaction only runs above the bound")
}
