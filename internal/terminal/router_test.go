package terminal

import (
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/domain"
)

func TestRouteViews(t *testing.T) {
	router := NewRoleRouter(false, zap.NewNop())

	cases := []struct {
		name    string
		session domain.Session
		phase   Phase
		want    View
	}{
		{"checking blocks role views", domain.Session{Token: "t", Role: domain.RoleAdmin}, PhaseChecking, ViewChecking},
		{"unauthenticated", domain.Session{}, PhaseUnauthenticated, ViewLogin},
		{"admin", domain.Session{Token: "t", Role: domain.RoleAdmin}, PhaseAuthenticated, ViewAdmin},
		{"staff", domain.Session{Token: "t", Role: domain.RoleStaff}, PhaseAuthenticated, ViewStaff},
		{"unknown role defaults to staff", domain.Session{Token: "t", Role: "supervisor"}, PhaseAuthenticated, ViewStaff},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			view, err := router.Route(tc.session, tc.phase)
			if err != nil {
				t.Fatalf("Route: %v", err)
			}
			if view != tc.want {
				t.Fatalf("got %s, want %s", view, tc.want)
			}
		})
	}
}

func TestRouteStrictModeFailsClosed(t *testing.T) {
	router := NewRoleRouter(true, zap.NewNop())
	view, err := router.Route(domain.Session{Token: "t", Role: "supervisor"}, PhaseAuthenticated)
	if err != ErrUnknownRole {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
	if view != ViewLogin {
		t.Fatalf("strict mode must fall back to login, got %s", view)
	}
}

func TestNoRoleViewBeforeRestoreResolves(t *testing.T) {
	m := newFileManager(t)
	router := NewRoleRouter(false, zap.NewNop())

	session, phase := m.Current()
	view, err := router.Route(session, phase)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if view != ViewChecking {
		t.Fatalf("only the checking view may render before restore, got %s", view)
	}

	if _, err := m.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	session, phase = m.Current()
	view, err = router.Route(session, phase)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if view != ViewLogin {
		t.Fatalf("expected login view after empty restore, got %s", view)
	}
}
