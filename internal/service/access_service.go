package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/parking-service/internal/auth"
	"github.com/spec-kit/parking-service/internal/config"
	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/events"
	"github.com/spec-kit/parking-service/internal/repository"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

// AccessService owns the staff authorization lifecycle: access requests,
// duty toggles, and admin-side staff management.
type AccessService struct {
	staff      repository.StaffRepository
	registry   auth.SessionRegistry
	dispatcher events.Dispatcher
	bcryptCost int
}

// AccessDependencies encapsulates requirements for the access service.
type AccessDependencies struct {
	StaffRepo  repository.StaffRepository
	Registry   auth.SessionRegistry
	Dispatcher events.Dispatcher
}

// NewAccessService constructs the service.
func NewAccessService(cfg config.Config, deps AccessDependencies) *AccessService {
	return &AccessService{
		staff:      deps.StaffRepo,
		registry:   deps.Registry,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

func requireAdmin(actor *domain.Admin) error {
	if actor == nil {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// RequestAccess marks a staff account as awaiting approval. It is an
// absolute set, so repeated submissions succeed without stacking requests.
func (s *AccessService) RequestAccess(ctx context.Context, staffID string) error {
	staff, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("staff account", map[string]any{"staff_id": staffID})
		}
		return apperrors.MapError(err)
	}

	if err := s.staff.SetAccessRequested(ctx, staff.ID, true); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.EventAccessRequested, events.Actor{Role: domain.RoleStaff, StaffID: &staff.ID},
		events.AccessRequestedPayload{StaffID: staff.ID})
	return nil
}

// ToggleAccess sets a staff member's duty flag to the requested target
// state. Last write wins; there is no version check. Revoking access also
// drops the member's live sessions so their next request fails closed.
func (s *AccessService) ToggleAccess(ctx context.Context, actor *domain.Admin, staffID string, onDuty bool) (*domain.StaffAccount, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	staff, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("staff account", map[string]any{"staff_id": staffID})
		}
		return nil, apperrors.MapError(err)
	}
	wasOnDuty := staff.IsOnDuty

	if err := s.staff.SetOnDuty(ctx, staff.ID, onDuty); err != nil {
		return nil, apperrors.MapError(err)
	}
	staff.IsOnDuty = onDuty

	if !onDuty {
		if err := s.registry.RevokeSubject(ctx, staff.ID); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	s.publish(ctx, events.EventAccessToggled, events.Actor{Role: domain.RoleAdmin, AdminID: &actor.ID},
		events.AccessToggledPayload{StaffID: staff.ID, OnDuty: onDuty, WasDuty: wasOnDuty})
	return staff, nil
}

// ListStaff returns staff records for the admin dashboard. Both is_on_duty
// and access_requested come back verbatim; a stale access_requested after a
// grant is left for the consumer to reconcile.
func (s *AccessService) ListStaff(ctx context.Context, actor *domain.Admin, filter repository.StaffFilter) ([]domain.StaffAccount, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	list, err := s.staff.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// CreateStaff registers a new staff account. New accounts start off duty
// with no pending request.
func (s *AccessService) CreateStaff(ctx context.Context, actor *domain.Admin, name, username, password, phone string) (*domain.StaffAccount, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	if _, err := s.staff.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username already taken", map[string]any{"username": username})
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	staff := &domain.StaffAccount{
		Name:         name,
		Username:     username,
		Phone:        phone,
		PasswordHash: hash,
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventStaffCreated, events.Actor{Role: domain.RoleAdmin, AdminID: &actor.ID},
		events.StaffCreatedPayload{StaffID: staff.ID, Username: staff.Username})
	return staff, nil
}

func (s *AccessService) publish(ctx context.Context, eventType events.EventType, actor events.Actor, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
