package domain

import "time"

// Session is the token/role pair a terminal holds for its process lifetime.
// Token and Role are set together or not at all.
type Session struct {
	Token string
	Role  Role
}

// Authenticated reports whether the session holds a complete pair.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.Role != ""
}

// AccessDenial is the ephemeral context created when a login is rejected
// because the account exists but has not been granted duty access.
type AccessDenial struct {
	StaffID string
	Message string
}

// IssuedToken records metadata for a token held in the session registry.
type IssuedToken struct {
	ID        string
	SubjectID string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
