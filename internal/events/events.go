// Package events carries typed domain events between business operations and
// their asynchronous reactions: cache eviction, audit capture and overdue
// notification dispatch. Events are immutable value objects; subscribers must
// never mutate them.
package events

import (
	"encoding/json"
	"time"

	id "tracker/pkg/domain"
)

// Type discriminates event variants on the bus.
type Type string

const (
	TypeProjectUpdated Type = "project.updated"
	TypeUserUpdated    Type = "user.updated"
	TypeTaskOverdue    Type = "task.overdue"
	TypeSecurity       Type = "security"
	TypeMutation       Type = "mutation"
)

// Event is implemented by every variant published on the bus.
type Event interface {
	Type() Type
}

// ProjectUpdated is published after a project write commits, carrying the
// flags needed for targeted cache eviction.
type ProjectUpdated struct {
	ProjectID     id.ProjectID
	ProjectName   string
	NameChanged   bool
	StatusChanged bool
}

// BasicProjectUpdate is the factory for metadata-only updates that never
// require dependent-cache eviction.
func BasicProjectUpdate(projectID id.ProjectID) ProjectUpdated {
	return ProjectUpdated{ProjectID: projectID}
}

// RequiresFullEviction reports whether dependent caches (listings, status
// partitions) embed a field changed by this update.
func (e ProjectUpdated) RequiresFullEviction() bool {
	return e.NameChanged || e.StatusChanged
}

func (e ProjectUpdated) Type() Type { return TypeProjectUpdated }

// UserUpdated is published after a user write commits. PreviousEmail is kept
// so the auth cache entries for both the old and the new address can be
// evicted; authentication lookups are keyed by email, not user id.
type UserUpdated struct {
	UserID        id.UserID
	Email         string
	PreviousEmail string
	EmailChanged  bool
	RoleChanged   bool
}

// ProfileUpdate is the factory for email-changing profile updates.
func ProfileUpdate(userID id.UserID, previousEmail, email string) UserUpdated {
	return UserUpdated{
		UserID:        userID,
		Email:         email,
		PreviousEmail: previousEmail,
		EmailChanged:  true,
	}
}

// RequiresAuthEviction reports whether the authentication cache must be
// invalidated for this update.
func (e UserUpdated) RequiresAuthEviction() bool {
	return e.EmailChanged || e.RoleChanged
}

func (e UserUpdated) Type() Type { return TypeUserUpdated }

// TaskOverdue signals that a task is past due and has not been notified
// today. Published by the overdue scanner, consumed by the dispatcher.
type TaskOverdue struct {
	TaskID      id.TaskID
	ProjectID   id.ProjectID
	AssigneeID  id.UserID
	DueDate     time.Time
	DaysOverdue int
}

func (e TaskOverdue) Type() Type { return TypeTaskOverdue }

// SecurityKind classifies security-relevant outcomes.
type SecurityKind string

const (
	SecurityLoginSuccess        SecurityKind = "login_success"
	SecurityLoginFailure        SecurityKind = "login_failure"
	SecurityLogout              SecurityKind = "logout"
	SecurityAccessDenied        SecurityKind = "access_denied"
	SecurityRegistrationSuccess SecurityKind = "registration_success"
	SecurityRegistrationFailure SecurityKind = "registration_failure"
	SecurityInvalidToken        SecurityKind = "invalid_token"
)

// Security captures an authentication or authorization outcome together with
// the request metadata needed for forensics.
type Security struct {
	Kind      SecurityKind
	ActorName string
	IPAddress string
	UserAgent string
	Endpoint  string
	Timestamp time.Time
	Detail    string
}

func (e Security) Type() Type { return TypeSecurity }

// Operation classifies business mutations for the audit trail.
type Operation string

const (
	OpCreate Operation = "CREATE"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// Mutation records one create/update/delete of a business entity. Payload is
// a best-effort serialization of the entity after the operation.
type Mutation struct {
	EntityType string
	EntityID   string
	Operation  Operation
	ActorName  string
	Timestamp  time.Time
	Payload    json.RawMessage
}

func (e Mutation) Type() Type { return TypeMutation }
