package catalog

import (
	"log/slog"

	"stormbringer/internal/catalog/routes"
	"stormbringer/internal/catalog/services"
	"stormbringer/pkg/database"
	"stormbringer/pkg/docstore"
	"stormbringer/pkg/middleware"
	"stormbringer/pkg/module"

	"github.com/danielgtaylor/huma/v2"
)

// Module represents the reference catalog module
type Module struct {
	*module.BaseModule
	service *services.Service
	routes  *routes.Routes
}

// NewModule creates a new catalog module
func NewModule(store docstore.Store, mongodb *database.MongoDB, redis *database.Redis, auth *middleware.AuthMiddleware, authorizer *middleware.Authorizer) *Module {
	service := services.NewService(store)

	return &Module{
		BaseModule: module.NewBaseModule("catalog", store, mongodb, redis),
		service:    service,
		routes:     routes.NewRoutes(service, auth, authorizer),
	}
}

// RegisterUnifiedRoutes registers catalog routes on the shared Huma API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	m.routes.RegisterUnifiedRoutes(api, basePath)
	slog.Info("Catalog routes registered", "base_path", basePath)
}

// GetService returns the catalog service for use by other modules
func (m *Module) GetService() *services.Service {
	return m.service
}

var _ module.Module = (*Module)(nil)
