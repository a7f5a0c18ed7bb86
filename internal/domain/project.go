package domain

import (
	"time"

	id "tracker/pkg/domain"
)

// ProjectStatus tracks a project through its lifecycle.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
)

// Project groups tasks under a deadline.
type Project struct {
	ID          id.ProjectID
	Name        string
	Description string
	Status      ProjectStatus
	Deadline    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AuditID satisfies the audit identity capability.
func (p Project) AuditID() string { return p.ID.String() }
