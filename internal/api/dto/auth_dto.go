package dto

// LoginRequest payload for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse payload on success: the pair terminals persist.
type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// AccessDeniedResponse is the forbidden payload for valid credentials
// without duty access. Terminals key off the AccessDenied flag.
type AccessDeniedResponse struct {
	AccessDenied bool   `json:"accessDenied"`
	StaffID      string `json:"staffId"`
	Message      string `json:"message"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// MessageResponse is the generic failure payload.
type MessageResponse struct {
	Message string `json:"message"`
}
