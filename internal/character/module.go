package character

import (
	"log/slog"

	"stormbringer/internal/character/routes"
	"stormbringer/internal/character/services"
	"stormbringer/pkg/database"
	"stormbringer/pkg/docstore"
	"stormbringer/pkg/middleware"
	"stormbringer/pkg/module"

	"github.com/danielgtaylor/huma/v2"
)

// Module represents the character module
type Module struct {
	*module.BaseModule
	service    *services.Service
	auth       *middleware.AuthMiddleware
	authorizer *middleware.Authorizer
}

// New creates a new character module instance
func New(store docstore.Store, mongodb *database.MongoDB, redis *database.Redis, catalog services.Catalog, auth *middleware.AuthMiddleware, authorizer *middleware.Authorizer) *Module {
	repo := services.NewRepository(store)

	return &Module{
		BaseModule: module.NewBaseModule("characters", store, mongodb, redis),
		service:    services.NewService(repo, store, catalog),
		auth:       auth,
		authorizer: authorizer,
	}
}

// RegisterUnifiedRoutes registers character routes on the shared Huma API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	routes.RegisterCharacterRoutes(api, basePath, m.service, m.auth, m.authorizer)
	slog.Info("Character routes registered", "base_path", basePath)
}

// GetService returns the character service
func (m *Module) GetService() *services.Service {
	return m.service
}

var _ module.Module = (*Module)(nil)
