package auth

import (
	"time"

	"github.com/registropol/registropol-backend/internal/users"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the session token, the authenticated user, and
// the view the client should land on.
type LoginResponse struct {
	Token       string         `json:"token"`
	ExpiresAt   time.Time      `json:"expires_at"`
	LandingView string         `json:"landing_view"`
	User        *users.UserDTO `json:"user"`
}
