package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/parking-service/internal/auth"
	"github.com/spec-kit/parking-service/internal/config"
	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

// In-memory fakes shared by the service tests.

type fakeAdminRepo struct {
	byID       map[string]*domain.Admin
	byUsername map[string]*domain.Admin
}

func newFakeAdminRepo(admins ...*domain.Admin) *fakeAdminRepo {
	r := &fakeAdminRepo{byID: map[string]*domain.Admin{}, byUsername: map[string]*domain.Admin{}}
	for _, a := range admins {
		r.byID[a.ID] = a
		r.byUsername[a.Username] = a
	}
	return r
}

func (r *fakeAdminRepo) GetByID(_ context.Context, id string) (*domain.Admin, error) {
	if a, ok := r.byID[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAdminRepo) GetByUsername(_ context.Context, username string) (*domain.Admin, error) {
	if a, ok := r.byUsername[username]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAdminRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	a, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	a.PasswordHash = passwordHash
	return nil
}

type fakeStaffRepo struct {
	nextID   int
	accounts map[string]*domain.StaffAccount
}

func newFakeStaffRepo(staff ...*domain.StaffAccount) *fakeStaffRepo {
	r := &fakeStaffRepo{accounts: map[string]*domain.StaffAccount{}}
	for _, s := range staff {
		r.accounts[s.ID] = s
	}
	return r
}

func (r *fakeStaffRepo) Create(_ context.Context, staff *domain.StaffAccount) error {
	r.nextID++
	staff.ID = fmt.Sprintf("staff-%d", r.nextID)
	copied := *staff
	r.accounts[staff.ID] = &copied
	return nil
}

func (r *fakeStaffRepo) GetByID(_ context.Context, id string) (*domain.StaffAccount, error) {
	if s, ok := r.accounts[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeStaffRepo) GetByUsername(_ context.Context, username string) (*domain.StaffAccount, error) {
	for _, s := range r.accounts {
		if s.Username == username {
			copied := *s
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeStaffRepo) List(_ context.Context, filter repository.StaffFilter) ([]domain.StaffAccount, error) {
	var result []domain.StaffAccount
	for _, s := range r.accounts {
		if filter.OnDuty != nil && s.IsOnDuty != *filter.OnDuty {
			continue
		}
		if filter.AccessRequested != nil && s.AccessRequested != *filter.AccessRequested {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (r *fakeStaffRepo) SetAccessRequested(_ context.Context, id string, requested bool) error {
	s, ok := r.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	s.AccessRequested = requested
	return nil
}

func (r *fakeStaffRepo) SetOnDuty(_ context.Context, id string, onDuty bool) error {
	s, ok := r.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	s.IsOnDuty = onDuty
	return nil
}

func (r *fakeStaffRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s, ok := r.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	s.PasswordHash = passwordHash
	return nil
}

type fakeRegistry struct {
	sessions map[string]string
	revoked  []string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{sessions: map[string]string{}}
}

func (r *fakeRegistry) Register(_ context.Context, token domain.IssuedToken) error {
	r.sessions[token.ID] = token.SubjectID
	return nil
}

func (r *fakeRegistry) Lookup(_ context.Context, tokenID string) (string, error) {
	subject, ok := r.sessions[tokenID]
	if !ok {
		return "", auth.ErrSessionNotFound
	}
	return subject, nil
}

func (r *fakeRegistry) Revoke(_ context.Context, tokenID string) error {
	delete(r.sessions, tokenID)
	r.revoked = append(r.revoked, tokenID)
	return nil
}

func (r *fakeRegistry) RevokeSubject(_ context.Context, subjectID string) error {
	for id, subject := range r.sessions {
		if subject == subjectID {
			delete(r.sessions, id)
			r.revoked = append(r.revoked, id)
		}
	}
	return nil
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		},
	}
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return hash
}

func domainCode(t *testing.T, err error) *apperrors.DomainError {
	t.Helper()
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	return de
}

func TestAdminLoginIssuesSession(t *testing.T) {
	admins := newFakeAdminRepo(&domain.Admin{ID: "admin-1", Username: "boss", PasswordHash: mustHash(t, "pw")})
	registry := newFakeRegistry()
	svc := NewAuthService(testConfig(), AuthDependencies{
		AdminRepo: admins,
		StaffRepo: newFakeStaffRepo(),
		Registry:  registry,
	})

	result, err := svc.Login(context.Background(), "boss", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Role != domain.RoleAdmin || result.Subject != "admin-1" {
		t.Fatalf("unexpected result %+v", result)
	}
	if subject, err := registry.Lookup(context.Background(), result.Issued.ID); err != nil || subject != "admin-1" {
		t.Fatalf("session not registered: subject=%q err=%v", subject, err)
	}
}

func TestStaffLoginOnDutyIssuesSession(t *testing.T) {
	staff := newFakeStaffRepo(&domain.StaffAccount{
		ID: "staff-1", Username: "worker", PasswordHash: mustHash(t, "pw"), IsOnDuty: true,
	})
	svc := NewAuthService(testConfig(), AuthDependencies{
		AdminRepo: newFakeAdminRepo(),
		StaffRepo: staff,
		Registry:  newFakeRegistry(),
	})

	result, err := svc.Login(context.Background(), "worker", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Role != domain.RoleStaff {
		t.Fatalf("unexpected role %s", result.Role)
	}
}

func TestStaffLoginOffDutyIsAccessNotGranted(t *testing.T) {
	staff := newFakeStaffRepo(&domain.StaffAccount{
		ID: "staff-1", Username: "worker", PasswordHash: mustHash(t, "pw"), IsOnDuty: false,
	})
	registry := newFakeRegistry()
	svc := NewAuthService(testConfig(), AuthDependencies{
		AdminRepo: newFakeAdminRepo(),
		StaffRepo: staff,
		Registry:  registry,
	})

	_, err := svc.Login(context.Background(), "worker", "pw")
	de := domainCode(t, err)
	if de.Code != "ACCESS_NOT_GRANTED" {
		t.Fatalf("unexpected code %s", de.Code)
	}
	if de.Message != AccessDeniedMessage {
		t.Fatalf("unexpected message %q", de.Message)
	}
	if de.Details["staff_id"] != "staff-1" {
		t.Fatalf("denial must carry the staff id, got %v", de.Details)
	}
	if len(registry.sessions) != 0 {
		t.Fatal("off-duty staff must never be issued a session")
	}
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	staff := newFakeStaffRepo(&domain.StaffAccount{
		ID: "staff-1", Username: "worker", PasswordHash: mustHash(t, "pw"), IsOnDuty: true,
	})
	svc := NewAuthService(testConfig(), AuthDependencies{
		AdminRepo: newFakeAdminRepo(),
		StaffRepo: staff,
		Registry:  newFakeRegistry(),
	})

	_, err := svc.Login(context.Background(), "worker", "nope")
	if de := domainCode(t, err); de.Code != "UNAUTHORIZED" {
		t.Fatalf("unexpected code %s", de.Code)
	}
}

func TestLoginUnknownUsernameIsUnauthorized(t *testing.T) {
	svc := NewAuthService(testConfig(), AuthDependencies{
		AdminRepo: newFakeAdminRepo(),
		StaffRepo: newFakeStaffRepo(),
		Registry:  newFakeRegistry(),
	})

	_, err := svc.Login(context.Background(), "ghost", "pw")
	if de := domainCode(t, err); de.Code != "UNAUTHORIZED" {
		t.Fatalf("unexpected code %s", de.Code)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	admins := newFakeAdminRepo(&domain.Admin{ID: "admin-1", Username: "boss", PasswordHash: mustHash(t, "pw")})
	registry := newFakeRegistry()
	svc := NewAuthService(testConfig(), AuthDependencies{
		AdminRepo: admins,
		StaffRepo: newFakeStaffRepo(),
		Registry:  registry,
	})

	result, err := svc.Login(context.Background(), "boss", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(context.Background(), result.Issued.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := registry.Lookup(context.Background(), result.Issued.ID); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("session still registered after logout: %v", err)
	}

	// Logging out without a token id is a quiet no-op.
	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("empty Logout: %v", err)
	}
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	staff := newFakeStaffRepo(&domain.StaffAccount{
		ID: "staff-1", Username: "worker", PasswordHash: mustHash(t, "old"), IsOnDuty: true,
	})
	svc := NewAuthService(testConfig(), AuthDependencies{
		AdminRepo: newFakeAdminRepo(),
		StaffRepo: staff,
		Registry:  newFakeRegistry(),
	})
	subject := AuthSubject{Role: domain.RoleStaff, ID: "staff-1"}

	err := svc.ChangePassword(context.Background(), subject, "wrong", "new")
	if de := domainCode(t, err); de.Code != "UNAUTHORIZED" {
		t.Fatalf("unexpected code %s", de.Code)
	}

	if err := svc.ChangePassword(context.Background(), subject, "old", "new"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	updated, _ := staff.GetByID(context.Background(), "staff-1")
	if err := auth.ComparePassword(updated.PasswordHash, "new"); err != nil {
		t.Fatalf("new password not stored: %v", err)
	}
}
