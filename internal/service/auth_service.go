package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/parking-service/internal/auth"
	"github.com/spec-kit/parking-service/internal/config"
	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

// AccessDeniedMessage is the reason returned when credentials are valid but
// duty access has not been granted.
const AccessDeniedMessage = "Access not granted yet."

// LoginResult carries the outcome of a successful login.
type LoginResult struct {
	Token   string
	Role    domain.Role
	Subject string
	Issued  domain.IssuedToken
}

// AuthSubject identifies the caller when changing password.
type AuthSubject struct {
	Role domain.Role
	ID   string
}

// AuthService coordinates credential validation and session issuance. Both
// roles authenticate against the same endpoint; admins win username lookup
// precedence.
type AuthService struct {
	admins     repository.AdminRepository
	staff      repository.StaffRepository
	registry   auth.SessionRegistry
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	AdminRepo repository.AdminRepository
	StaffRepo repository.StaffRepository
	Registry  auth.SessionRegistry
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		admins:     deps.AdminRepo,
		staff:      deps.StaffRepo,
		registry:   deps.Registry,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Login authenticates a username/password pair. A staff account with valid
// credentials but is_on_duty=false yields an ACCESS_NOT_GRANTED error
// carrying the staff id; it is never issued a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	switch {
	case err == nil:
		if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return s.issue(ctx, admin.ID, domain.RoleAdmin)
	case err != pgx.ErrNoRows:
		return nil, apperrors.MapError(err)
	}

	staff, err := s.staff.GetByUsername(ctx, username)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(staff.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !staff.IsOnDuty {
		return nil, apperrors.NewAccessNotGranted(staff.ID, AccessDeniedMessage)
	}
	return s.issue(ctx, staff.ID, domain.RoleStaff)
}

func (s *AuthService) issue(ctx context.Context, subjectID string, role domain.Role) (*LoginResult, error) {
	token, issued, err := s.tokenMgr.GenerateToken(subjectID, role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.registry.Register(ctx, issued); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{Token: token, Role: role, Subject: subjectID, Issued: issued}, nil
}

// Logout revokes the caller's session in the registry. Revoking an already
// absent session is a no-op.
func (s *AuthService) Logout(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		return nil
	}
	return s.registry.Revoke(ctx, tokenID)
}

// ChangePassword verifies the current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, subject AuthSubject, currentPassword, newPassword string) error {
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}

	switch subject.Role {
	case domain.RoleAdmin:
		admin, err := s.admins.GetByID(ctx, subject.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if err := auth.ComparePassword(admin.PasswordHash, currentPassword); err != nil {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		return s.admins.UpdatePassword(ctx, admin.ID, hash)
	case domain.RoleStaff:
		staff, err := s.staff.GetByID(ctx, subject.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if err := auth.ComparePassword(staff.PasswordHash, currentPassword); err != nil {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		return s.staff.UpdatePassword(ctx, staff.ID, hash)
	default:
		return apperrors.NewUnauthorized("unknown role")
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
