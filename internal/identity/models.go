package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role is the coarse authorization role attached to a principal.
// The core only ever checks role membership; how the caller proved their
// identity is the authentication collaborator's problem.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleJudge     Role = "judge"
	RoleSecretary Role = "secretary"
	RoleCustodian Role = "custodian"
	RoleAuditor   Role = "auditor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleJudge, RoleSecretary, RoleCustodian, RoleAuditor:
		return true
	}
	return false
}

// Principal is the trusted (principal_id, username, role) triple supplied to
// every core operation after token validation.
type Principal struct {
	ID       uuid.UUID
	Username string
	Role     Role
}

// User is a stored identity record. Credentials are kept only so the demo
// seeding and tokengen tooling have something to verify against.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
}

// Principal projects the user into the trusted call context shape.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Username: u.Username, Role: u.Role}
}
