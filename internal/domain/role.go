package domain

// Role is the claim carried by issued tokens and persisted by terminals.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Known reports whether the role is one of the two defined roles.
func (r Role) Known() bool {
	return r == RoleAdmin || r == RoleStaff
}
