package terminal

import (
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/domain"
)

// View is the top-level view a terminal presents.
type View string

const (
	ViewChecking View = "checking"
	ViewLogin    View = "login"
	ViewAdmin    View = "admin"
	ViewStaff    View = "staff"
)

// ErrUnknownRole is returned in strict mode when a session carries a role
// claim that is neither admin nor staff; callers must terminate the
// session and fall back to the login view.
var ErrUnknownRole = errors.New("unrecognized role claim")

// RoleRouter maps session state to exactly one view. By default an
// unrecognized role string routes to the staff view; that default is a
// privilege-assignment decision, so it is logged loudly and StrictRoles
// turns it into a fail-closed error instead.
type RoleRouter struct {
	strict bool
	logger *zap.Logger
}

// NewRoleRouter builds a router.
func NewRoleRouter(strict bool, logger *zap.Logger) *RoleRouter {
	return &RoleRouter{strict: strict, logger: logger}
}

// Route is a pure function of session state. While the manager is still
// checking, only ViewChecking is ever returned.
func (r *RoleRouter) Route(session domain.Session, phase Phase) (View, error) {
	switch phase {
	case PhaseChecking:
		return ViewChecking, nil
	case PhaseUnauthenticated:
		return ViewLogin, nil
	}

	if !session.Authenticated() {
		return ViewLogin, nil
	}
	switch session.Role {
	case domain.RoleAdmin:
		return ViewAdmin, nil
	case domain.RoleStaff:
		return ViewStaff, nil
	default:
		if r.strict {
			r.logger.Warn("unrecognized role, failing closed", zap.String("role", string(session.Role)))
			return ViewLogin, ErrUnknownRole
		}
		r.logger.Warn("unrecognized role, defaulting to staff view", zap.String("role", string(session.Role)))
		return ViewStaff, nil
	}
}
