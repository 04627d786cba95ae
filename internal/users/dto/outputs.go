package dto

import (
	"time"

	"stormbringer/internal/users/models"
)

// UserOutput wraps a user profile
type UserOutput struct {
	Body models.User
}

// LoginResponse is an issued session
type LoginResponse struct {
	Token     string      `json:"token" doc:"Bearer token"`
	ExpiresAt time.Time   `json:"expiresAt" doc:"Token expiry"`
	User      models.User `json:"user"`
}

// LoginOutput carries the session token in the body and as a cookie
type LoginOutput struct {
	SetCookie string `header:"Set-Cookie" doc:"Authentication cookie"`
	Body      LoginResponse
}

// LogoutResponse acknowledges a logout
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LogoutOutput clears the authentication cookie
type LogoutOutput struct {
	SetCookie string `header:"Set-Cookie" doc:"Clear authentication cookie"`
	Body      LogoutResponse
}
