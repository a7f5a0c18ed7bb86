package domain

import (
	"time"

	id "tracker/pkg/domain"
)

// Status tracks a task through its lifecycle.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Priority orders tasks within a project.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Task is a unit of work inside a project. DueDate is nil for tasks without a
// deadline; such tasks are never considered overdue.
type Task struct {
	ID          id.TaskID
	ProjectID   id.ProjectID
	AssigneeID  id.UserID
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Overdue reports whether the task is past due as of the given date.
func (t Task) Overdue(asOf time.Time) bool {
	if t.DueDate == nil || t.Status == StatusDone {
		return false
	}
	due := DateOf(*t.DueDate)
	return !due.After(DateOf(asOf))
}

// AuditID satisfies the audit identity capability.
func (t Task) AuditID() string { return t.ID.String() }

// DateOf truncates a time to its UTC calendar date. The scanner and the
// notification ledger compare dates, never instants.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
