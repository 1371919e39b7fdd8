package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-service/internal/api/dto"
	"github.com/spec-kit/parking-service/internal/auth"
	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository"
	"github.com/spec-kit/parking-service/internal/service"
)

// AdminHandler exposes the administrator staff-management endpoints.
type AdminHandler struct {
	access *service.AccessService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(access *service.AccessService) *AdminHandler {
	return &AdminHandler{access: access}
}

// ListStaff handles GET /api/admin/staff. The response is a bare array;
// the admin dashboard consumes it directly.
func (h *AdminHandler) ListStaff(c *fiber.Ctx) error {
	admin, err := requireAdminPrincipal(c)
	if err != nil {
		return err
	}

	filter := parseStaffFilter(c)
	list, err := h.access.ListStaff(c.Context(), admin, filter)
	if err != nil {
		return err
	}

	resp := make([]dto.StaffResponse, 0, len(list))
	for i := range list {
		resp = append(resp, staffResponse(&list[i]))
	}
	return c.JSON(resp)
}

// CreateStaff handles POST /api/admin/create-staff.
func (h *AdminHandler) CreateStaff(c *fiber.Ctx) error {
	admin, err := requireAdminPrincipal(c)
	if err != nil {
		return err
	}

	var req dto.StaffCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" || req.Username == "" || req.Password == "" || req.Phone == "" {
		return fiber.NewError(http.StatusBadRequest, "name, username, password, phone required")
	}

	staff, err := h.access.CreateStaff(c.Context(), admin, req.Name, req.Username, req.Password, req.Phone)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(staffResponse(staff))
}

// ToggleAccess handles PUT /api/admin/toggle-access. The request carries
// the target state computed by the client; the store applies it last-write-
// wins and the client re-fetches the listing afterwards.
func (h *AdminHandler) ToggleAccess(c *fiber.Ctx) error {
	admin, err := requireAdminPrincipal(c)
	if err != nil {
		return err
	}

	var req dto.ToggleAccessRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.StaffID == "" {
		return fiber.NewError(http.StatusBadRequest, "staffId required")
	}

	staff, err := h.access.ToggleAccess(c.Context(), admin, req.StaffID, req.IsOnDuty != 0)
	if err != nil {
		return err
	}
	return c.JSON(staffResponse(staff))
}

// RequestAccess handles POST /api/staff/request-access. The caller has no
// session yet (their login was just refused), so the route is public.
func (h *AdminHandler) RequestAccess(c *fiber.Ctx) error {
	var req dto.RequestAccessRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.StaffID == "" {
		return fiber.NewError(http.StatusBadRequest, "staffId required")
	}

	if err := h.access.RequestAccess(c.Context(), req.StaffID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "request_sent"})
}

func requireAdminPrincipal(c *fiber.Ctx) (*domain.Admin, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return nil, fiber.NewError(http.StatusForbidden, "admin role required")
	}
	return principal.Admin, nil
}

func parseStaffFilter(c *fiber.Ctx) repository.StaffFilter {
	var filter repository.StaffFilter
	if val := c.Query("on_duty"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			filter.OnDuty = &parsed
		}
	}
	if val := c.Query("access_requested"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			filter.AccessRequested = &parsed
		}
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 100)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

func staffResponse(staff *domain.StaffAccount) dto.StaffResponse {
	return dto.StaffResponse{
		ID:              staff.ID,
		Name:            staff.Name,
		Username:        staff.Username,
		Phone:           staff.Phone,
		IsOnDuty:        staff.IsOnDuty,
		AccessRequested: staff.AccessRequested,
	}
}
