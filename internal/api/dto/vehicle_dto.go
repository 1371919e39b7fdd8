package dto

import "time"

// VehicleEntryRequest payload for POST /api/staff/vehicle/entry.
type VehicleEntryRequest struct {
	VehicleNumber string `json:"vehicleNumber"`
	VehicleType   string `json:"vehicleType"`
}

// VehicleExitRequest payload for POST /api/staff/vehicle/exit.
type VehicleExitRequest struct {
	VehicleNumber string `json:"vehicleNumber"`
}

// VehicleResponse is one ledger record.
type VehicleResponse struct {
	ID            string     `json:"id"`
	VehicleNumber string     `json:"vehicle_number"`
	VehicleType   string     `json:"vehicle_type"`
	EntryTime     time.Time  `json:"entry_time"`
	ExitTime      *time.Time `json:"exit_time,omitempty"`
	Fee           int64      `json:"fee"`
	PaymentStatus string     `json:"payment_status"`
}
