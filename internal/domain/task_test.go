package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTask_Overdue(t *testing.T) {
	asOf := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	yesterday := asOf.Add(-24 * time.Hour)
	tomorrow := asOf.Add(24 * time.Hour)
	lateToday := time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"past due", Task{Status: StatusTodo, DueDate: &yesterday}, true},
		{"due today", Task{Status: StatusInProgress, DueDate: &lateToday}, true},
		{"due tomorrow", Task{Status: StatusTodo, DueDate: &tomorrow}, false},
		{"no due date", Task{Status: StatusTodo}, false},
		{"done task", Task{Status: StatusDone, DueDate: &yesterday}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.Overdue(asOf))
		})
	}
}

func TestDateOf(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	in := time.Date(2026, 8, 30, 23, 30, 0, 0, est) // 2026-08-31 04:30 UTC
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), DateOf(in))
}
