// Package domain holds typed identifiers shared across the tracker modules.
// Typed IDs prevent cross-entity assignment mistakes at compile time.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

type (
	// TaskID identifies a task.
	TaskID uuid.UUID
	// ProjectID identifies a project.
	ProjectID uuid.UUID
	// UserID identifies a user.
	UserID uuid.UUID
)

// NewTaskID returns a freshly generated task ID.
func NewTaskID() TaskID { return TaskID(uuid.New()) }

// NewProjectID returns a freshly generated project ID.
func NewProjectID() ProjectID { return ProjectID(uuid.New()) }

// NewUserID returns a freshly generated user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// ParseTaskID parses a canonical UUID string into a TaskID.
func ParseTaskID(s string) (TaskID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return TaskID{}, fmt.Errorf("parse task id: %w", err)
	}
	return TaskID(u), nil
}

// ParseProjectID parses a canonical UUID string into a ProjectID.
func ParseProjectID(s string) (ProjectID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ProjectID{}, fmt.Errorf("parse project id: %w", err)
	}
	return ProjectID(u), nil
}

// ParseUserID parses a canonical UUID string into a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, fmt.Errorf("parse user id: %w", err)
	}
	return UserID(u), nil
}

func (id TaskID) String() string    { return uuid.UUID(id).String() }
func (id ProjectID) String() string { return uuid.UUID(id).String() }
func (id UserID) String() string    { return uuid.UUID(id).String() }

func (id TaskID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ProjectID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
