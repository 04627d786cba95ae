package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// AuthCookieName is the cookie the login endpoint sets
const AuthCookieName = "stormbringer_token"

// AuthContextKey key for storing user info in context
type AuthContextKey string

const (
	AuthContextKeyUser = AuthContextKey("authenticated_user")
)

// AuthenticatedUser is the identity carried by a validated token
type AuthenticatedUser struct {
	UserID    string   `json:"user_id"`
	UserName  string   `json:"user_name"`
	SessionID string   `json:"session_id"`
	Roles     []string `json:"roles"`
}

// HasRole reports whether the user carries role
func (u *AuthenticatedUser) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// JWTValidator interface for JWT validation
type JWTValidator interface {
	ValidateJWT(token string) (*AuthenticatedUser, error)
}

// AuthMiddleware provides authentication utilities for API operations
type AuthMiddleware struct {
	jwtValidator JWTValidator
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(validator JWTValidator) *AuthMiddleware {
	return &AuthMiddleware{
		jwtValidator: validator,
	}
}

// ValidateAuthFromHeaders validates authentication from request headers
func (m *AuthMiddleware) ValidateAuthFromHeaders(authHeader, cookieHeader string) (*AuthenticatedUser, error) {
	// Authorization header wins over the cookie
	token := m.ExtractTokenFromHeaders(authHeader)
	if token == "" && cookieHeader != "" {
		token = m.ExtractTokenFromCookie(cookieHeader)
	}

	if token == "" {
		return nil, huma.Error401Unauthorized("Authentication required")
	}

	user, err := m.ValidateToken(token)
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid authentication token", err)
	}

	return user, nil
}

// ValidateOptionalAuthFromHeaders returns nil instead of an error for anonymous requests
func (m *AuthMiddleware) ValidateOptionalAuthFromHeaders(authHeader, cookieHeader string) *AuthenticatedUser {
	user, _ := m.ValidateAuthFromHeaders(authHeader, cookieHeader)
	return user
}

// ExtractTokenFromHeaders extracts JWT token from Authorization header string
func (m *AuthMiddleware) ExtractTokenFromHeaders(authHeader string) string {
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// ExtractTokenFromCookie extracts JWT token from cookie header string
func (m *AuthMiddleware) ExtractTokenFromCookie(cookieHeader string) string {
	for _, cookie := range strings.Split(cookieHeader, ";") {
		cookie = strings.TrimSpace(cookie)
		if strings.HasPrefix(cookie, AuthCookieName+"=") {
			return strings.TrimPrefix(cookie, AuthCookieName+"=")
		}
	}
	return ""
}

// ValidateToken validates a JWT token string and returns the authenticated user
func (m *AuthMiddleware) ValidateToken(token string) (*AuthenticatedUser, error) {
	if token == "" {
		return nil, &AuthError{message: "no authentication token provided"}
	}
	return m.jwtValidator.ValidateJWT(token)
}

// WithAuthenticatedUser stores user in ctx
func WithAuthenticatedUser(ctx context.Context, user *AuthenticatedUser) context.Context {
	return context.WithValue(ctx, AuthContextKeyUser, user)
}

// GetAuthenticatedUser retrieves authenticated user from standard context
func GetAuthenticatedUser(ctx context.Context) *AuthenticatedUser {
	if user, ok := ctx.Value(AuthContextKeyUser).(*AuthenticatedUser); ok {
		return user
	}
	return nil
}

// AuthError represents an authentication error
type AuthError struct {
	message string
}

func (e *AuthError) Error() string {
	return e.message
}

// NewAuthError creates a new authentication error
func NewAuthError(message string) *AuthError {
	return &AuthError{message: message}
}

// CreateAuthCookieHeader creates a Set-Cookie header string for authentication
func CreateAuthCookieHeader(token string, ttl time.Duration) string {
	return fmt.Sprintf("%s=%s; Path=/; Max-Age=%d; HttpOnly; Secure; SameSite=Lax", AuthCookieName, token, int(ttl.Seconds()))
}

// CreateClearCookieHeader creates a Set-Cookie header string to clear the auth cookie
func CreateClearCookieHeader() string {
	return AuthCookieName + "=; Path=/; Max-Age=0; HttpOnly; Secure; SameSite=Lax"
}
