package terminal

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced to the terminal UI. Every collaborator failure is
// converted to one of these before it reaches a view; raw transport errors
// never do.
var (
	// ErrInvalidCredentials: bad username/password, retry by resubmitting.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStaleAuthorization: a previously valid token was rejected; the
	// session must be terminated and the login view shown.
	ErrStaleAuthorization = errors.New("authorization no longer valid")
	// ErrServerFault: collaborator unreachable or failing; generic and
	// retryable, no state was mutated.
	ErrServerFault = errors.New("server unavailable, try again")
	// ErrBusy: the same form already has a request outstanding.
	ErrBusy = errors.New("request already in progress")
	// ErrNoDenialContext: RequestAccess called without a pending denial.
	ErrNoDenialContext = errors.New("no access denial to act on")
)

// AccessDeniedError carries the access-not-granted rejection: valid
// credentials for an account whose duty access is pending. It routes to
// the request-access flow, not to the generic error path.
type AccessDeniedError struct {
	StaffID string
	Message string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied for staff %s: %s", e.StaffID, e.Message)
}
