package routes

import (
	"context"
	"errors"
	"log/slog"

	"stormbringer/internal/users/dto"
	"stormbringer/internal/users/services"
	"stormbringer/pkg/middleware"

	"github.com/danielgtaylor/huma/v2"
)

// Routes exposes registration and login over the unified API
type Routes struct {
	service *services.Service
	tokens  *services.TokenService
	auth    *middleware.AuthMiddleware
}

// NewRoutes creates user routes
func NewRoutes(service *services.Service, tokens *services.TokenService, auth *middleware.AuthMiddleware) *Routes {
	return &Routes{service: service, tokens: tokens, auth: auth}
}

// RegisterUnifiedRoutes registers user operations under basePath
func (r *Routes) RegisterUnifiedRoutes(api huma.API, basePath string) {
	huma.Register(api, huma.Operation{
		OperationID:   "users-register",
		Method:        "POST",
		Path:          basePath + "/register",
		Summary:       "Register",
		Description:   "Create a player account",
		Tags:          []string{"Users"},
		DefaultStatus: 201,
	}, r.register)

	huma.Register(api, huma.Operation{
		OperationID: "users-login",
		Method:      "POST",
		Path:        basePath + "/login",
		Summary:     "Log in",
		Description: "Exchange credentials for a session token, returned in the body and as a cookie",
		Tags:        []string{"Users"},
	}, r.login)

	huma.Register(api, huma.Operation{
		OperationID: "users-logout",
		Method:      "POST",
		Path:        basePath + "/logout",
		Summary:     "Log out",
		Description: "Clear the authentication cookie",
		Tags:        []string{"Users"},
	}, r.logout)

	huma.Register(api, huma.Operation{
		OperationID: "users-me",
		Method:      "GET",
		Path:        basePath + "/me",
		Summary:     "Current user",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearerAuth": {}}, {"cookieAuth": {}}},
	}, r.me)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, services.ErrUserExists):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return huma.Error401Unauthorized(err.Error())
	case errors.Is(err, services.ErrNotFound):
		return huma.Error404NotFound("User not found")
	default:
		slog.Error("User operation failed", "error", err)
		return huma.Error500InternalServerError("Failed to process request", err)
	}
}

func (r *Routes) register(ctx context.Context, input *dto.RegisterInput) (*dto.UserOutput, error) {
	user, err := r.service.Register(ctx, input.Body)
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.UserOutput{Body: *user}, nil
}

func (r *Routes) login(ctx context.Context, input *dto.LoginInput) (*dto.LoginOutput, error) {
	session, err := r.service.Login(ctx, input.Body)
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.LoginOutput{
		SetCookie: middleware.CreateAuthCookieHeader(session.Token, r.tokens.TTL()),
		Body: dto.LoginResponse{
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt,
			User:      *session.User,
		},
	}, nil
}

func (r *Routes) logout(ctx context.Context, input *dto.LogoutInput) (*dto.LogoutOutput, error) {
	return &dto.LogoutOutput{
		SetCookie: middleware.CreateClearCookieHeader(),
		Body:      dto.LogoutResponse{Success: true, Message: "Logged out"},
	}, nil
}

func (r *Routes) me(ctx context.Context, input *dto.MeInput) (*dto.UserOutput, error) {
	user, err := r.auth.ValidateAuthFromHeaders(input.Authorization, input.Cookie)
	if err != nil {
		return nil, err
	}
	profile, err := r.service.Me(ctx, user.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.UserOutput{Body: *profile}, nil
}
