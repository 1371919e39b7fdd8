package dto

// RequestAccessRequest payload for POST /api/staff/request-access.
type RequestAccessRequest struct {
	StaffID string `json:"staffId"`
}

// StaffCreateRequest payload for POST /api/admin/create-staff.
type StaffCreateRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// ToggleAccessRequest payload for PUT /api/admin/toggle-access. IsOnDuty is
// the target state as 0|1, following the original wire contract.
type ToggleAccessRequest struct {
	StaffID  string `json:"staffId"`
	IsOnDuty int    `json:"is_on_duty"`
}

// StaffResponse is one row of the admin staff listing. Both flags are
// exposed verbatim; access_requested may remain true after a grant.
type StaffResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Username        string `json:"username"`
	Phone           string `json:"phone"`
	IsOnDuty        bool   `json:"is_on_duty"`
	AccessRequested bool   `json:"access_requested"`
}
