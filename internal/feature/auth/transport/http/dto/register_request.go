// Package dto defines data transfer objects for the auth feature's HTTP transport layer.
package dto

// RegisterReq represents the request body for the /auth/register endpoint.
// Binding tags reject obviously malformed input before the usecase applies the domain rules.
type RegisterReq struct {
	Email    string `json:"email" binding:"required,trimmedemail"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}
