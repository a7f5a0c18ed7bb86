// Package audit captures the append-only trail of business mutations and
// security-relevant actions. Audit is a diagnostic side channel: nothing in
// this package may fail or roll back the operation it describes.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"tracker/internal/events"
)

// Action is the recorded action kind: a business mutation or a security
// outcome.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"

	ActionLoginSuccess        Action = "LOGIN_SUCCESS"
	ActionLoginFailure        Action = "LOGIN_FAILURE"
	ActionLogout              Action = "LOGOUT"
	ActionAccessDenied        Action = "ACCESS_DENIED"
	ActionRegistrationSuccess Action = "REGISTRATION_SUCCESS"
	ActionRegistrationFailure Action = "REGISTRATION_FAILURE"
	ActionInvalidToken        Action = "INVALID_TOKEN"
)

// securityActions maps security event kinds onto recorded actions.
var securityActions = map[events.SecurityKind]Action{
	events.SecurityLoginSuccess:        ActionLoginSuccess,
	events.SecurityLoginFailure:        ActionLoginFailure,
	events.SecurityLogout:              ActionLogout,
	events.SecurityAccessDenied:        ActionAccessDenied,
	events.SecurityRegistrationSuccess: ActionRegistrationSuccess,
	events.SecurityRegistrationFailure: ActionRegistrationFailure,
	events.SecurityInvalidToken:        ActionInvalidToken,
}

// Entry is one append-only audit record. Entries are never mutated or
// deleted by the application; retention is owned by the storage layer.
type Entry struct {
	ID         uuid.UUID
	Action     Action
	EntityType string
	EntityID   string
	ActorName  string
	Timestamp  time.Time
	Payload    json.RawMessage

	// Security metadata, populated for security entries only.
	IPAddress string
	UserAgent string
	Endpoint  string
	Detail    string
}
