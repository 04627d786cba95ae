package campaign

import (
	"context"
	"log/slog"

	"stormbringer/internal/campaign/routes"
	"stormbringer/internal/campaign/services"
	"stormbringer/pkg/config"
	"stormbringer/pkg/database"
	"stormbringer/pkg/docstore"
	"stormbringer/pkg/middleware"
	"stormbringer/pkg/module"

	"github.com/danielgtaylor/huma/v2"
)

// Module represents the campaign module
type Module struct {
	*module.BaseModule
	service   *services.Service
	routes    *routes.Routes
	reminders *services.ReminderScheduler
}

// New creates a new campaign module. Session caches live in Redis when it is
// available and in process memory otherwise.
func New(store docstore.Store, mongodb *database.MongoDB, redis *database.Redis, auth *middleware.AuthMiddleware, authorizer *middleware.Authorizer) *Module {
	var caches services.CacheProvider
	var locker services.Locker
	if redis != nil {
		caches = services.NewRedisCacheProvider(redis, config.GetSessionCacheTTL())
		locker = redis
	} else {
		slog.Warn("Redis unavailable, campaign session caches are kept in memory")
		caches = services.NewMemoryCacheProvider()
	}

	service := services.NewService(services.NewRepository(store), caches)

	return &Module{
		BaseModule: module.NewBaseModule("campaigns", store, mongodb, redis),
		service:    service,
		routes:     routes.NewRoutes(service, auth, authorizer),
		reminders:  services.NewReminderScheduler(service, locker, config.GetReminderSchedule()),
	}
}

// RegisterUnifiedRoutes registers campaign routes on the shared Huma API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	m.routes.RegisterUnifiedRoutes(api, basePath)
	slog.Info("Campaign routes registered", "base_path", basePath)
}

// StartBackgroundTasks runs the upcoming session reminders until stopped
func (m *Module) StartBackgroundTasks(ctx context.Context) {
	if err := m.reminders.Start(ctx); err != nil {
		slog.Error("Failed to start campaign reminders", "error", err)
		return
	}
	defer m.reminders.Stop()

	select {
	case <-ctx.Done():
	case <-m.StopChannel():
	}
}

// GetService returns the campaign service for use by other modules
func (m *Module) GetService() *services.Service {
	return m.service
}

var _ module.Module = (*Module)(nil)
