package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"stormbringer/pkg/version"
)

// DependencyCheck probes one backing service
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status       string            `json:"status"`
	Module       string            `json:"module,omitempty"`
	Version      string            `json:"version,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// HealthHandler creates a health check handler. A failing dependency turns
// the status into "degraded" but still answers 200 so the fallback paths
// stay reachable behind load balancers.
func HealthHandler(moduleName string, checks ...DependencyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:  "healthy",
			Module:  moduleName,
			Version: version.GetVersionString(),
		}

		if len(checks) > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			response.Dependencies = make(map[string]string, len(checks))
			for _, dep := range checks {
				if dep.Check == nil {
					response.Dependencies[dep.Name] = "disabled"
					continue
				}
				if err := dep.Check(ctx); err != nil {
					slog.Warn("Health dependency failed", "module", moduleName, "dependency", dep.Name, "error", err)
					response.Dependencies[dep.Name] = "unhealthy"
					response.Status = "degraded"
					continue
				}
				response.Dependencies[dep.Name] = "healthy"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			slog.Error("Failed to encode health response", "error", err, "module", moduleName)
		}
	}
}
