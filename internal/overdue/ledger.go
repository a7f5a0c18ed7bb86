// Package overdue sweeps the task store for overdue work and decides, per
// task and per calendar day, whether a notification is due.
package overdue

import (
	"sync"
	"time"

	"tracker/internal/domain"
	id "tracker/pkg/domain"
)

// Ledger maps each task to the last calendar date a notification was sent
// for it. It is the sole synchronization point between sweep workers: the
// check-and-set in MarkIfDue guarantees at most one positive decision per
// task per day. Entries for completed or deleted tasks are dead weight, not
// correctness hazards, and are reclaimed by Compact.
type Ledger struct {
	mu      sync.Mutex
	entries map[id.TaskID]time.Time
	max     int
}

// NewLedger creates a ledger that starts compacting above max entries.
// max <= 0 means unbounded.
func NewLedger(max int) *Ledger {
	return &Ledger{
		entries: make(map[id.TaskID]time.Time),
		max:     max,
	}
}

// MarkIfDue records today as the task's last-notified date and returns true
// iff no notification was recorded today already. The date comparison and
// the overwrite happen under one lock, so concurrent sweeps cannot both
// claim the same task-day.
func (l *Ledger) MarkIfDue(taskID id.TaskID, today time.Time) bool {
	day := domain.DateOf(today)

	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.entries[taskID]; ok && !last.Before(day) {
		return false
	}
	l.entries[taskID] = day
	return true
}

// LastNotified returns the recorded date for a task, if any.
func (l *Ledger) LastNotified(taskID id.TaskID) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	last, ok := l.entries[taskID]
	return last, ok
}

// Compact drops entries from before today once the ledger exceeds its bound.
// Dropping a stale entry can at worst cause one duplicate notification on a
// later day, never a missed one.
func (l *Ledger) Compact(today time.Time) {
	day := domain.DateOf(today)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max <= 0 || len(l.entries) <= l.max {
		return
	}
	for taskID, last := range l.entries {
		if last.Before(day) {
			delete(l.entries, taskID)
		}
	}
}

// Len reports the number of ledger entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
