package terminal

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/domain"
)

// Confirmation shown after a successful access request.
const RequestSentMessage = "Request sent! Please wait for admin approval."

// LoginFlow drives the login / access-request cycle for one terminal. It
// holds at most one AccessDenial at a time and guards its two forms
// against double submission.
type LoginFlow struct {
	mu       sync.Mutex
	client   Collaborator
	sessions *SessionManager
	logger   *zap.Logger

	denial      *domain.AccessDenial
	loginBusy   bool
	requestBusy bool
}

// NewLoginFlow builds the flow.
func NewLoginFlow(client Collaborator, sessions *SessionManager, logger *zap.Logger) *LoginFlow {
	return &LoginFlow{client: client, sessions: sessions, logger: logger}
}

// Login validates credentials against the collaborator. On success the
// session manager establishes the pair; an access-denied rejection leaves
// an AccessDenial for RequestAccess; anything else surfaces a generic
// retryable error. Any new attempt clears a previous denial first.
func (f *LoginFlow) Login(ctx context.Context, username, password string) (domain.Session, error) {
	f.mu.Lock()
	if f.loginBusy {
		f.mu.Unlock()
		return domain.Session{}, ErrBusy
	}
	f.loginBusy = true
	f.denial = nil
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.loginBusy = false
		f.mu.Unlock()
	}()

	reply, err := f.client.Login(ctx, username, password)
	if err != nil {
		var denied *AccessDeniedError
		if errors.As(err, &denied) {
			f.mu.Lock()
			f.denial = &domain.AccessDenial{StaffID: denied.StaffID, Message: denied.Message}
			f.mu.Unlock()
			f.logger.Info("login refused pending access grant", zap.String("staff_id", denied.StaffID))
			return domain.Session{}, err
		}
		return domain.Session{}, err
	}

	if err := f.sessions.Establish(reply.Token, domain.Role(reply.Role)); err != nil {
		return domain.Session{}, err
	}
	session, _ := f.sessions.Current()
	return session, nil
}

// RequestAccess notifies the administrator for the identity held in the
// current denial context. Safe to submit more than once; the server-side
// flag is an absolute set. On success the denial is cleared and the
// confirmation message returned; on failure the denial stays so the user
// can retry.
func (f *LoginFlow) RequestAccess(ctx context.Context) (string, error) {
	f.mu.Lock()
	if f.requestBusy {
		f.mu.Unlock()
		return "", ErrBusy
	}
	denial := f.denial
	if denial == nil {
		f.mu.Unlock()
		return "", ErrNoDenialContext
	}
	f.requestBusy = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.requestBusy = false
		f.mu.Unlock()
	}()

	if err := f.client.RequestAccess(ctx, denial.StaffID); err != nil {
		f.logger.Warn("access request failed", zap.String("staff_id", denial.StaffID), zap.Error(err))
		return "", err
	}

	f.mu.Lock()
	f.denial = nil
	f.mu.Unlock()
	return RequestSentMessage, nil
}

// Denial returns the pending access denial, if any.
func (f *LoginFlow) Denial() *domain.AccessDenial {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denial == nil {
		return nil
	}
	copied := *f.denial
	return &copied
}

// ClearDenial drops the denial context, e.g. when navigating away.
func (f *LoginFlow) ClearDenial() {
	f.mu.Lock()
	f.denial = nil
	f.mu.Unlock()
}

// Logout revokes the server-side session and terminates the local one. The
// local pair is cleared even when the collaborator call fails; a dead
// token is not worth keeping.
func (f *LoginFlow) Logout(ctx context.Context) error {
	token := f.sessions.Token()
	if token != "" {
		if err := f.client.Logout(ctx, token); err != nil && !errors.Is(err, ErrStaleAuthorization) {
			f.logger.Warn("server-side logout failed", zap.Error(err))
		}
	}
	return f.sessions.Terminate()
}
