package module

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"stormbringer/pkg/database"
	"stormbringer/pkg/docstore"
	"stormbringer/pkg/handlers"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

// Module defines the interface that all application modules must implement
type Module interface {
	// Routes sets up plain HTTP routes (health) for this module
	Routes(r chi.Router)

	// RegisterUnifiedRoutes registers typed operations on the shared API
	RegisterUnifiedRoutes(api huma.API, basePath string)

	// StartBackgroundTasks starts any background processing for this module
	StartBackgroundTasks(ctx context.Context)

	// Stop gracefully stops the module and its background tasks
	Stop()

	// Name returns the module name for logging and identification
	Name() string
}

// BaseModule provides common functionality for all modules
type BaseModule struct {
	name     string
	store    docstore.Store
	mongodb  *database.MongoDB
	redis    *database.Redis
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewBaseModule creates a new base module with common dependencies. mongodb
// and redis may be nil.
func NewBaseModule(name string, store docstore.Store, mongodb *database.MongoDB, redis *database.Redis) *BaseModule {
	return &BaseModule{
		name:    name,
		store:   store,
		mongodb: mongodb,
		redis:   redis,
		stopCh:  make(chan struct{}),
	}
}

// Name returns the module name
func (b *BaseModule) Name() string {
	return b.name
}

// Store returns the document store
func (b *BaseModule) Store() docstore.Store {
	return b.store
}

// MongoDB returns the MongoDB connection
func (b *BaseModule) MongoDB() *database.MongoDB {
	return b.mongodb
}

// Redis returns the Redis connection
func (b *BaseModule) Redis() *database.Redis {
	return b.redis
}

// StopChannel returns the stop channel for background tasks
func (b *BaseModule) StopChannel() <-chan struct{} {
	return b.stopCh
}

// Stop gracefully stops the module
func (b *BaseModule) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopCh)
		slog.Info("Module stopped", "module", b.name)
	})
}

// StartBackgroundTasks blocks until the module is stopped. Modules with
// periodic work override it.
func (b *BaseModule) StartBackgroundTasks(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-b.stopCh:
	}
}

// HealthHandler creates a health check handler probing the module's backends
func (b *BaseModule) HealthHandler() http.HandlerFunc {
	var checks []handlers.DependencyCheck
	if b.mongodb != nil {
		checks = append(checks, handlers.DependencyCheck{Name: "mongodb", Check: b.mongodb.HealthCheck})
	}
	if b.redis != nil {
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Check: b.redis.HealthCheck})
	}
	return handlers.HealthHandler(b.name, checks...)
}

// RegisterHealthRoute registers the health endpoint for this module
func (b *BaseModule) RegisterHealthRoute(r chi.Router) {
	r.Get("/health", b.HealthHandler())
}

// Routes mounts the module health route
func (b *BaseModule) Routes(r chi.Router) {
	b.RegisterHealthRoute(r)
}
