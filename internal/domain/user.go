package domain

import (
	"time"

	id "tracker/pkg/domain"
)

// Role is the coarse authorization role attached to a user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleDeveloper Role = "developer"
)

// User is an account that can own projects and be assigned tasks.
type User struct {
	ID        id.UserID
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
}

// AuditID satisfies the audit identity capability.
func (u User) AuditID() string { return u.ID.String() }
