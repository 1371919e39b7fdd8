package terminal

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/domain"
)

// fakeCollaborator lets tests script each contract independently.
type fakeCollaborator struct {
	loginFn         func(ctx context.Context, username, password string) (*LoginReply, error)
	requestAccessFn func(ctx context.Context, staffID string) error
	listStaffFn     func(ctx context.Context, token string) ([]StaffRecord, error)
	toggleFn        func(ctx context.Context, token, staffID string, onDuty bool) error
	createStaffFn   func(ctx context.Context, token string, input CreateStaffInput) error
	logoutFn        func(ctx context.Context, token string) error
}

func (f *fakeCollaborator) Login(ctx context.Context, username, password string) (*LoginReply, error) {
	return f.loginFn(ctx, username, password)
}

func (f *fakeCollaborator) RequestAccess(ctx context.Context, staffID string) error {
	return f.requestAccessFn(ctx, staffID)
}

func (f *fakeCollaborator) ListStaff(ctx context.Context, token string) ([]StaffRecord, error) {
	return f.listStaffFn(ctx, token)
}

func (f *fakeCollaborator) CreateStaff(ctx context.Context, token string, input CreateStaffInput) error {
	return f.createStaffFn(ctx, token, input)
}

func (f *fakeCollaborator) ToggleAccess(ctx context.Context, token, staffID string, onDuty bool) error {
	return f.toggleFn(ctx, token, staffID, onDuty)
}

func (f *fakeCollaborator) Logout(ctx context.Context, token string) error {
	if f.logoutFn == nil {
		return nil
	}
	return f.logoutFn(ctx, token)
}

func (f *fakeCollaborator) ListVehicles(context.Context, string) ([]VehicleRow, error) {
	return nil, nil
}

func (f *fakeCollaborator) VehicleEntry(context.Context, string, string, string) error {
	return nil
}

func (f *fakeCollaborator) VehicleExit(context.Context, string, string) (*VehicleRow, error) {
	return nil, nil
}

func newFlowFixture(t *testing.T, client Collaborator) (*LoginFlow, *SessionManager) {
	t.Helper()
	sessions := NewSessionManager(NewMemoryStore(), zap.NewNop())
	if _, err := sessions.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	return NewLoginFlow(client, sessions, zap.NewNop()), sessions
}

func TestLoginSuccessEstablishesSession(t *testing.T) {
	client := &fakeCollaborator{
		loginFn: func(_ context.Context, username, password string) (*LoginReply, error) {
			if username != "admin1" || password != "pw" {
				t.Fatalf("unexpected credentials %s/%s", username, password)
			}
			return &LoginReply{Token: "tok-a", Role: "admin"}, nil
		},
	}
	flow, sessions := newFlowFixture(t, client)

	session, err := flow.Login(context.Background(), "admin1", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Token != "tok-a" || session.Role != domain.RoleAdmin {
		t.Fatalf("unexpected session %+v", session)
	}
	if _, phase := sessions.Current(); phase != PhaseAuthenticated {
		t.Fatalf("expected authenticated phase, got %v", phase)
	}
	if flow.Denial() != nil {
		t.Fatal("no denial expected on success")
	}
}

func TestLoginAccessDeniedCreatesDenialContextOnly(t *testing.T) {
	client := &fakeCollaborator{
		loginFn: func(context.Context, string, string) (*LoginReply, error) {
			return nil, &AccessDeniedError{StaffID: "42", Message: "Access not granted yet."}
		},
	}
	flow, sessions := newFlowFixture(t, client)

	_, err := flow.Login(context.Background(), "staff1", "pw")
	var denied *AccessDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected AccessDeniedError, got %v", err)
	}

	denial := flow.Denial()
	if denial == nil || denial.StaffID != "42" || denial.Message != "Access not granted yet." {
		t.Fatalf("unexpected denial %+v", denial)
	}
	if session, _ := sessions.Current(); session.Authenticated() {
		t.Fatal("no session may be established on access denial")
	}
}

func TestLoginGenericFailureLeavesNoDenial(t *testing.T) {
	client := &fakeCollaborator{
		loginFn: func(context.Context, string, string) (*LoginReply, error) {
			return nil, ErrInvalidCredentials
		},
	}
	flow, _ := newFlowFixture(t, client)

	if _, err := flow.Login(context.Background(), "staff1", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if flow.Denial() != nil {
		t.Fatal("bad credentials must not create a denial context")
	}
}

func TestNewLoginAttemptClearsDenial(t *testing.T) {
	calls := 0
	client := &fakeCollaborator{
		loginFn: func(context.Context, string, string) (*LoginReply, error) {
			calls++
			if calls == 1 {
				return nil, &AccessDeniedError{StaffID: "42", Message: "Access not granted yet."}
			}
			return nil, ErrInvalidCredentials
		},
	}
	flow, _ := newFlowFixture(t, client)

	_, _ = flow.Login(context.Background(), "staff1", "pw")
	if flow.Denial() == nil {
		t.Fatal("expected denial after first attempt")
	}

	_, _ = flow.Login(context.Background(), "staff1", "other")
	if flow.Denial() != nil {
		t.Fatal("new attempt must clear prior denial")
	}
}

func TestRequestAccessClearsDenialAndConfirms(t *testing.T) {
	var requested []string
	client := &fakeCollaborator{
		loginFn: func(context.Context, string, string) (*LoginReply, error) {
			return nil, &AccessDeniedError{StaffID: "42", Message: "Access not granted yet."}
		},
		requestAccessFn: func(_ context.Context, staffID string) error {
			requested = append(requested, staffID)
			return nil
		},
	}
	flow, _ := newFlowFixture(t, client)
	_, _ = flow.Login(context.Background(), "staff1", "pw")

	msg, err := flow.RequestAccess(context.Background())
	if err != nil {
		t.Fatalf("RequestAccess: %v", err)
	}
	if msg != RequestSentMessage {
		t.Fatalf("unexpected confirmation %q", msg)
	}
	if len(requested) != 1 || requested[0] != "42" {
		t.Fatalf("unexpected requests %v", requested)
	}
	if flow.Denial() != nil {
		t.Fatal("denial must clear on successful request")
	}
}

func TestRequestAccessFailureKeepsDenial(t *testing.T) {
	client := &fakeCollaborator{
		loginFn: func(context.Context, string, string) (*LoginReply, error) {
			return nil, &AccessDeniedError{StaffID: "42", Message: "Access not granted yet."}
		},
		requestAccessFn: func(context.Context, string) error {
			return ErrServerFault
		},
	}
	flow, _ := newFlowFixture(t, client)
	_, _ = flow.Login(context.Background(), "staff1", "pw")

	if _, err := flow.RequestAccess(context.Background()); !errors.Is(err, ErrServerFault) {
		t.Fatalf("expected ErrServerFault, got %v", err)
	}
	if flow.Denial() == nil {
		t.Fatal("denial must survive a failed request for manual retry")
	}
}

func TestRequestAccessWithoutDenialIsRejected(t *testing.T) {
	client := &fakeCollaborator{
		requestAccessFn: func(context.Context, string) error { return nil },
	}
	flow, _ := newFlowFixture(t, client)

	if _, err := flow.RequestAccess(context.Background()); !errors.Is(err, ErrNoDenialContext) {
		t.Fatalf("expected ErrNoDenialContext, got %v", err)
	}
}

func TestLoginBusyGuard(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	client := &fakeCollaborator{
		loginFn: func(context.Context, string, string) (*LoginReply, error) {
			close(started)
			<-release
			return &LoginReply{Token: "tok", Role: "staff"}, nil
		},
	}
	flow, _ := newFlowFixture(t, client)

	done := make(chan error, 1)
	go func() {
		_, err := flow.Login(context.Background(), "staff1", "pw")
		done <- err
	}()

	<-started
	if _, err := flow.Login(context.Background(), "staff1", "pw"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy while a login is outstanding, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first login: %v", err)
	}
}

func TestLogoutTerminatesEvenWhenServerFails(t *testing.T) {
	client := &fakeCollaborator{
		loginFn: func(context.Context, string, string) (*LoginReply, error) {
			return &LoginReply{Token: "tok", Role: "staff"}, nil
		},
		logoutFn: func(context.Context, string) error { return ErrServerFault },
	}
	flow, sessions := newFlowFixture(t, client)
	if _, err := flow.Login(context.Background(), "staff1", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := flow.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if session, phase := sessions.Current(); session.Authenticated() || phase != PhaseUnauthenticated {
		t.Fatalf("session must clear on logout, got %+v phase=%v", session, phase)
	}
}
