// Package tasks exposes the read access this subsystem needs over the
// project-tracker store. The CRUD service owns writes; the scanner and
// dispatcher only read.
package tasks

import (
	"context"
	"time"

	"tracker/internal/domain"
	id "tracker/pkg/domain"
)

// Store is the task-store client contract.
type Store interface {
	// ListOverdue returns one fixed-size page of tasks whose due date is on
	// or before asOf's calendar date and whose status is not done. Tasks
	// without a due date never appear. No ordering is guaranteed beyond
	// stable paging within one sweep.
	ListOverdue(ctx context.Context, asOf time.Time, page, size int) ([]domain.Task, error)

	GetTask(ctx context.Context, taskID id.TaskID) (*domain.Task, error)
	GetProject(ctx context.Context, projectID id.ProjectID) (*domain.Project, error)
	GetUser(ctx context.Context, userID id.UserID) (*domain.User, error)
}
