package auth

import "maatram_portal_backend/internal/identity"

// SignUpRequest is the sign-up form. Role is limited to the self-service roles.
type SignUpRequest struct {
	Name       string `json:"name" binding:"required,max=120"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	Role       string `json:"role" binding:"omitempty,oneof=student organizer"`
	RegisterNo string `json:"registerNo" binding:"max=64"`
}

// LoginRequest defines the structure for login requests.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignUpResponse is the new session plus the dashboard the client should open.
type SignUpResponse struct {
	Credential *identity.Credential `json:"credential"`
	Redirect   string               `json:"redirect"`
}
