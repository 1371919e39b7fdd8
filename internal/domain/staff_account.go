package domain

import "time"

// StaffAccount models one gate operator. Accounts are created by an
// administrator and are never deleted; operational access is gated solely
// by IsOnDuty.
type StaffAccount struct {
	ID           string
	Name         string
	Username     string
	Phone        string
	PasswordHash string
	IsOnDuty     bool
	// AccessRequested is set by the staff member while off duty. It is not
	// cleared when access is granted; listings expose it verbatim so the
	// admin side can reconcile.
	AccessRequested bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
