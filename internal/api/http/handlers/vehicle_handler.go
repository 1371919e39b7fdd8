package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-service/internal/api/dto"
	"github.com/spec-kit/parking-service/internal/auth"
	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/service"
)

// VehicleHandler exposes the staff-side vehicle ledger endpoints.
type VehicleHandler struct {
	ledger *service.LedgerService
}

// NewVehicleHandler constructs handler.
func NewVehicleHandler(ledger *service.LedgerService) *VehicleHandler {
	return &VehicleHandler{ledger: ledger}
}

// List handles GET /api/staff/vehicles.
func (h *VehicleHandler) List(c *fiber.Ctx) error {
	staff, err := requireStaffPrincipal(c)
	if err != nil {
		return err
	}

	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 100)
	list, err := h.ledger.ListVehicles(c.Context(), staff, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}

	resp := make([]dto.VehicleResponse, 0, len(list))
	for i := range list {
		resp = append(resp, vehicleResponse(&list[i]))
	}
	return c.JSON(resp)
}

// Entry handles POST /api/staff/vehicle/entry.
func (h *VehicleHandler) Entry(c *fiber.Ctx) error {
	staff, err := requireStaffPrincipal(c)
	if err != nil {
		return err
	}

	var req dto.VehicleEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.VehicleNumber == "" || req.VehicleType == "" {
		return fiber.NewError(http.StatusBadRequest, "vehicleNumber and vehicleType required")
	}

	rec, err := h.ledger.RecordEntry(c.Context(), staff, req.VehicleNumber, domain.VehicleType(req.VehicleType))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(vehicleResponse(rec))
}

// Exit handles POST /api/staff/vehicle/exit.
func (h *VehicleHandler) Exit(c *fiber.Ctx) error {
	staff, err := requireStaffPrincipal(c)
	if err != nil {
		return err
	}

	var req dto.VehicleExitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.VehicleNumber == "" {
		return fiber.NewError(http.StatusBadRequest, "vehicleNumber required")
	}

	rec, err := h.ledger.RecordExit(c.Context(), staff, req.VehicleNumber)
	if err != nil {
		return err
	}
	return c.JSON(vehicleResponse(rec))
}

func requireStaffPrincipal(c *fiber.Ctx) (*domain.StaffAccount, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return nil, fiber.NewError(http.StatusForbidden, "staff role required")
	}
	return principal.Staff, nil
}

func vehicleResponse(rec *domain.VehicleRecord) dto.VehicleResponse {
	return dto.VehicleResponse{
		ID:            rec.ID,
		VehicleNumber: rec.VehicleNumber,
		VehicleType:   string(rec.VehicleType),
		EntryTime:     rec.EntryTime,
		ExitTime:      rec.ExitTime,
		Fee:           rec.Fee,
		PaymentStatus: string(rec.PaymentStatus),
	}
}
