package domain

import "time"

// VehicleType enumerates billable vehicle categories.
type VehicleType string

const (
	VehicleTypeTwoWheeler  VehicleType = "TWO_WHEELER"
	VehicleTypeFourWheeler VehicleType = "FOUR_WHEELER"
)

// PaymentStatus marks whether a parking fee has been settled.
type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "PAID"
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
)

// VehicleRecord is one parking session in the ledger. ExitTime is nil while
// the vehicle is still inside the facility.
type VehicleRecord struct {
	ID            string
	VehicleNumber string
	VehicleType   VehicleType
	EntryTime     time.Time
	ExitTime      *time.Time
	Fee           int64
	PaymentStatus PaymentStatus
	RecordedBy    string
}
