package users

import (
	"log/slog"

	"stormbringer/internal/users/routes"
	"stormbringer/internal/users/services"
	"stormbringer/pkg/config"
	"stormbringer/pkg/database"
	"stormbringer/pkg/docstore"
	"stormbringer/pkg/middleware"
	"stormbringer/pkg/module"

	"github.com/danielgtaylor/huma/v2"
)

// Module represents the users module
type Module struct {
	*module.BaseModule
	service *services.Service
	tokens  *services.TokenService
	routes  *routes.Routes
}

// New creates a new users module. tokens is shared with the auth middleware.
func New(store docstore.Store, mongodb *database.MongoDB, redis *database.Redis, tokens *services.TokenService, auth *middleware.AuthMiddleware, authorizer *middleware.Authorizer) *Module {
	service := services.NewService(services.NewRepository(store), tokens, authorizer, config.GetAdminUsernames())

	return &Module{
		BaseModule: module.NewBaseModule("users", store, mongodb, redis),
		service:    service,
		tokens:     tokens,
		routes:     routes.NewRoutes(service, tokens, auth),
	}
}

// RegisterUnifiedRoutes registers user routes on the shared Huma API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	m.routes.RegisterUnifiedRoutes(api, basePath)
	slog.Info("User routes registered", "base_path", basePath)
}

// GetService returns the user service
func (m *Module) GetService() *services.Service {
	return m.service
}

var _ module.Module = (*Module)(nil)
