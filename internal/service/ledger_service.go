package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/events"
	"github.com/spec-kit/parking-service/internal/repository"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

// Flat hourly rates, minimum one hour, partial hours rounded up.
const (
	hourlyRateTwoWheeler  = 20
	hourlyRateFourWheeler = 40
)

// LedgerService records vehicle entries and exits and computes fees.
type LedgerService struct {
	vehicles   repository.VehicleRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// NewLedgerService constructs the service.
func NewLedgerService(vehicles repository.VehicleRepository, dispatcher events.Dispatcher) *LedgerService {
	return &LedgerService{vehicles: vehicles, dispatcher: dispatcher, now: time.Now}
}

// RecordEntry opens a parking session for a plate. A plate with an open
// session cannot enter again.
func (s *LedgerService) RecordEntry(ctx context.Context, actor *domain.StaffAccount, vehicleNumber string, vehicleType domain.VehicleType) (*domain.VehicleRecord, error) {
	if actor == nil {
		return nil, apperrors.NewForbidden("staff role required")
	}
	vehicleNumber = strings.ToUpper(strings.TrimSpace(vehicleNumber))
	if vehicleNumber == "" {
		return nil, apperrors.NewValidationError("vehicle number required", nil)
	}
	if vehicleType != domain.VehicleTypeTwoWheeler && vehicleType != domain.VehicleTypeFourWheeler {
		return nil, apperrors.NewValidationError("unknown vehicle type", map[string]any{"vehicle_type": vehicleType})
	}

	if _, err := s.vehicles.GetOpenByNumber(ctx, vehicleNumber); err == nil {
		return nil, apperrors.NewConflict("vehicle already inside", map[string]any{"vehicle_number": vehicleNumber})
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}

	rec := &domain.VehicleRecord{
		VehicleNumber: vehicleNumber,
		VehicleType:   vehicleType,
		EntryTime:     s.now(),
		PaymentStatus: domain.PaymentStatusUnpaid,
		RecordedBy:    actor.ID,
	}
	if err := s.vehicles.Create(ctx, rec); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventVehicleEntered, actor.ID,
		events.VehicleEnteredPayload{RecordID: rec.ID, VehicleNumber: rec.VehicleNumber, VehicleType: rec.VehicleType})
	return rec, nil
}

// RecordExit closes the open session for a plate, computing and settling
// the fee.
func (s *LedgerService) RecordExit(ctx context.Context, actor *domain.StaffAccount, vehicleNumber string) (*domain.VehicleRecord, error) {
	if actor == nil {
		return nil, apperrors.NewForbidden("staff role required")
	}
	vehicleNumber = strings.ToUpper(strings.TrimSpace(vehicleNumber))

	rec, err := s.vehicles.GetOpenByNumber(ctx, vehicleNumber)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("open parking session", map[string]any{"vehicle_number": vehicleNumber})
		}
		return nil, apperrors.MapError(err)
	}

	exitTime := s.now()
	fee := ComputeFee(rec.VehicleType, rec.EntryTime, exitTime)
	if err := s.vehicles.MarkExited(ctx, rec.ID, exitTime, fee); err != nil {
		return nil, apperrors.MapError(err)
	}
	rec.ExitTime = &exitTime
	rec.Fee = fee
	rec.PaymentStatus = domain.PaymentStatusPaid

	s.publish(ctx, events.EventVehicleExited, actor.ID,
		events.VehicleExitedPayload{RecordID: rec.ID, VehicleNumber: rec.VehicleNumber, Fee: fee})
	return rec, nil
}

// ListVehicles returns ledger records, newest first.
func (s *LedgerService) ListVehicles(ctx context.Context, actor *domain.StaffAccount, limit, offset int) ([]domain.VehicleRecord, error) {
	if actor == nil {
		return nil, apperrors.NewForbidden("staff role required")
	}
	list, err := s.vehicles.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// ComputeFee charges per started hour with a one-hour minimum.
func ComputeFee(vehicleType domain.VehicleType, entry, exit time.Time) int64 {
	rate := int64(hourlyRateTwoWheeler)
	if vehicleType == domain.VehicleTypeFourWheeler {
		rate = hourlyRateFourWheeler
	}

	elapsed := exit.Sub(entry)
	hours := int64(elapsed / time.Hour)
	if elapsed%time.Hour > 0 {
		hours++
	}
	if hours < 1 {
		hours = 1
	}
	return rate * hours
}

func (s *LedgerService) publish(ctx context.Context, eventType events.EventType, staffID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     events.Actor{Role: domain.RoleStaff, StaffID: &staffID},
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
