package dto

// UpdatePasswordReq represents the request body for /auth/updatePassword.
// Presence is checked by the usecase so both fields are reported together.
type UpdatePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// PromoteReq represents the request body for /auth/promote.
type PromoteReq struct {
	Email string `json:"email"`
}

// SetStatusReq represents the request body for /users/:id/status.
// IsActive is a pointer so that an explicit false passes the required check.
type SetStatusReq struct {
	IsActive *bool `json:"isActive" binding:"required"`
}
