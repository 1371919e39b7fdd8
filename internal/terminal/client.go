package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LoginReply is the successful credential-validator response.
type LoginReply struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// StaffRecord is one row of the admin staff listing as served by the
// access state store.
type StaffRecord struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Username        string `json:"username"`
	Phone           string `json:"phone"`
	IsOnDuty        bool   `json:"is_on_duty"`
	AccessRequested bool   `json:"access_requested"`
}

// VehicleRow is one vehicle ledger record as served by the ledger service.
type VehicleRow struct {
	ID            string  `json:"id"`
	VehicleNumber string  `json:"vehicle_number"`
	VehicleType   string  `json:"vehicle_type"`
	EntryTime     string  `json:"entry_time"`
	ExitTime      *string `json:"exit_time,omitempty"`
	Fee           int64   `json:"fee"`
	PaymentStatus string  `json:"payment_status"`
}

// CreateStaffInput carries the registration form fields.
type CreateStaffInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// Collaborator is the request/response surface the terminal core consumes:
// the credential validator, the access state store and the vehicle ledger
// behind one bearer-authenticated contract.
type Collaborator interface {
	Login(ctx context.Context, username, password string) (*LoginReply, error)
	RequestAccess(ctx context.Context, staffID string) error
	ListStaff(ctx context.Context, token string) ([]StaffRecord, error)
	CreateStaff(ctx context.Context, token string, input CreateStaffInput) error
	ToggleAccess(ctx context.Context, token, staffID string, onDuty bool) error
	Logout(ctx context.Context, token string) error
	ListVehicles(ctx context.Context, token string) ([]VehicleRow, error)
	VehicleEntry(ctx context.Context, token, vehicleNumber, vehicleType string) error
	VehicleExit(ctx context.Context, token, vehicleNumber string) (*VehicleRow, error)
}

// HTTPCollaborator talks JSON over HTTP to the parking-access service.
type HTTPCollaborator struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCollaborator wraps an HTTP endpoint. A nil client gets a default
// with the given timeout.
func NewHTTPCollaborator(baseURL string, timeout time.Duration, client *http.Client) *HTTPCollaborator {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPCollaborator{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type loginErrorReply struct {
	AccessDenied bool            `json:"accessDenied"`
	StaffID      json.RawMessage `json:"staffId"`
	Message      string          `json:"message"`
}

// Login distinguishes three outcomes: a session pair, an access-denied
// rejection (valid credentials, no duty access), and everything else.
func (c *HTTPCollaborator) Login(ctx context.Context, username, password string) (*LoginReply, error) {
	body, status, err := c.do(ctx, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, ErrServerFault
	}

	switch {
	case status == http.StatusOK:
		var reply LoginReply
		if err := json.Unmarshal(body, &reply); err != nil || reply.Token == "" || reply.Role == "" {
			return nil, ErrServerFault
		}
		return &reply, nil
	case status == http.StatusForbidden:
		var rej loginErrorReply
		if err := json.Unmarshal(body, &rej); err == nil && rej.AccessDenied {
			msg := rej.Message
			if msg == "" {
				msg = "Access not granted yet."
			}
			return nil, &AccessDeniedError{StaffID: rawToString(rej.StaffID), Message: msg}
		}
		return nil, ErrInvalidCredentials
	case status == http.StatusUnauthorized || status == http.StatusBadRequest:
		return nil, ErrInvalidCredentials
	default:
		return nil, ErrServerFault
	}
}

func (c *HTTPCollaborator) RequestAccess(ctx context.Context, staffID string) error {
	_, status, err := c.do(ctx, http.MethodPost, "/api/staff/request-access", "", map[string]string{
		"staffId": staffID,
	})
	if err != nil || status >= 300 {
		return ErrServerFault
	}
	return nil
}

func (c *HTTPCollaborator) ListStaff(ctx context.Context, token string) ([]StaffRecord, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/api/admin/staff", token, nil)
	if err != nil {
		return nil, ErrServerFault
	}
	if err := checkAuthedStatus(status); err != nil {
		return nil, err
	}

	var list []StaffRecord
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, ErrServerFault
	}
	return list, nil
}

func (c *HTTPCollaborator) CreateStaff(ctx context.Context, token string, input CreateStaffInput) error {
	_, status, err := c.do(ctx, http.MethodPost, "/api/admin/create-staff", token, input)
	if err != nil {
		return ErrServerFault
	}
	return checkAuthedStatus(status)
}

func (c *HTTPCollaborator) ToggleAccess(ctx context.Context, token, staffID string, onDuty bool) error {
	target := 0
	if onDuty {
		target = 1
	}
	_, status, err := c.do(ctx, http.MethodPut, "/api/admin/toggle-access", token, map[string]any{
		"staffId":    staffID,
		"is_on_duty": target,
	})
	if err != nil {
		return ErrServerFault
	}
	return checkAuthedStatus(status)
}

func (c *HTTPCollaborator) Logout(ctx context.Context, token string) error {
	_, status, err := c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil)
	if err != nil {
		return ErrServerFault
	}
	return checkAuthedStatus(status)
}

func (c *HTTPCollaborator) ListVehicles(ctx context.Context, token string) ([]VehicleRow, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/api/staff/vehicles", token, nil)
	if err != nil {
		return nil, ErrServerFault
	}
	if err := checkAuthedStatus(status); err != nil {
		return nil, err
	}

	var list []VehicleRow
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, ErrServerFault
	}
	return list, nil
}

func (c *HTTPCollaborator) VehicleEntry(ctx context.Context, token, vehicleNumber, vehicleType string) error {
	_, status, err := c.do(ctx, http.MethodPost, "/api/staff/vehicle/entry", token, map[string]string{
		"vehicleNumber": vehicleNumber,
		"vehicleType":   vehicleType,
	})
	if err != nil {
		return ErrServerFault
	}
	return checkAuthedStatus(status)
}

func (c *HTTPCollaborator) VehicleExit(ctx context.Context, token, vehicleNumber string) (*VehicleRow, error) {
	body, status, err := c.do(ctx, http.MethodPost, "/api/staff/vehicle/exit", token, map[string]string{
		"vehicleNumber": vehicleNumber,
	})
	if err != nil {
		return nil, ErrServerFault
	}
	if err := checkAuthedStatus(status); err != nil {
		return nil, err
	}

	var row VehicleRow
	if err := json.Unmarshal(body, &row); err != nil {
		return nil, ErrServerFault
	}
	return &row, nil
}

func (c *HTTPCollaborator) do(ctx context.Context, method, path, token string, payload any) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

// checkAuthedStatus maps statuses of bearer-authenticated calls. A 401
// means the token the terminal holds is no longer honored.
func checkAuthedStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return ErrStaleAuthorization
	case status >= 500:
		return ErrServerFault
	default:
		return fmt.Errorf("%w: status %d", ErrServerFault, status)
	}
}

// rawToString tolerates numeric and string staff ids on the wire.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}
