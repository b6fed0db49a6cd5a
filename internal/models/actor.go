// internal/models/actor.go
package models

// Role is the coarse authorization role attached to an actor by the
// identity provider.
type Role string

const (
	RoleLearner   Role = "learner"
	RolePreceptor Role = "preceptor"
	RoleAdmin     Role = "admin"
)

// Actor is the opaque authenticated identity attached to every mutating
// call. The core never authenticates, only authorizes.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
