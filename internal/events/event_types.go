package events

import (
	"time"

	"github.com/spec-kit/parking-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventStaffCreated    EventType = "staff_created"
	EventAccessRequested EventType = "access_requested"
	EventAccessToggled   EventType = "access_toggled"
	EventVehicleEntered  EventType = "vehicle_entered"
	EventVehicleExited   EventType = "vehicle_exited"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role    domain.Role `json:"role"`
	AdminID *string     `json:"admin_id,omitempty"`
	StaffID *string     `json:"staff_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// StaffCreatedPayload payload.
type StaffCreatedPayload struct {
	StaffID  string `json:"staff_id"`
	Username string `json:"username"`
}

// AccessRequestedPayload payload.
type AccessRequestedPayload struct {
	StaffID string `json:"staff_id"`
}

// AccessToggledPayload payload.
type AccessToggledPayload struct {
	StaffID string `json:"staff_id"`
	OnDuty  bool   `json:"on_duty"`
	WasDuty bool   `json:"was_on_duty"`
}

// VehicleEnteredPayload payload.
type VehicleEnteredPayload struct {
	RecordID      string             `json:"record_id"`
	VehicleNumber string             `json:"vehicle_number"`
	VehicleType   domain.VehicleType `json:"vehicle_type"`
}

// VehicleExitedPayload payload.
type VehicleExitedPayload struct {
	RecordID      string `json:"record_id"`
	VehicleNumber string `json:"vehicle_number"`
	Fee           int64  `json:"fee"`
}
