package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"stormbringer/internal/server"
	userServices "stormbringer/internal/users/services"
	"stormbringer/pkg/app"
	"stormbringer/pkg/config"
	"stormbringer/pkg/handlers"
	stormMiddleware "stormbringer/pkg/middleware"
	"stormbringer/pkg/version"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	_ "go.uber.org/automaxprocs"
)

const serviceName = "stormbringer"

// requestLogger logs requests except health probes
func requestLogger(next http.Handler) http.Handler {
	logged := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/health") {
			next.ServeHTTP(w, r)
			return
		}
		logged.ServeHTTP(w, r)
	})
}

// corsMiddleware allows the configured browser origins to call the API
// with credentials
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler
}

func main() {
	info := version.Get()
	log.Printf("Stormbringer %s | Build: %s", version.GetVersionString(), info.BuildDate)
	log.Printf("CPUs: %d | GOMAXPROCS: %d", runtime.NumCPU(), runtime.GOMAXPROCS(0))

	appCtx, err := app.InitializeApp(serviceName)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware(config.GetCORSOrigins()))
	r.Use(handlers.TracingMiddleware(serviceName))

	r.Get("/health", healthHandler)

	var authorizer *stormMiddleware.Authorizer
	if appCtx.MongoDB != nil {
		authorizer, err = stormMiddleware.NewAuthorizer(appCtx.MongoDB.Client, appCtx.MongoDB.Database.Name())
		if err != nil {
			log.Fatalf("Failed to initialize authorizer: %v", err)
		}
	} else {
		authorizer = stormMiddleware.NewMemoryAuthorizer()
	}

	mounted := server.NewModules(server.Dependencies{
		Store:      appCtx.Store,
		MongoDB:    appCtx.MongoDB,
		Redis:      appCtx.Redis,
		Tokens:     userServices.NewTokenService(config.GetJWTSecret(), config.GetJWTTTL()),
		Authorizer: authorizer,
	})
	modules := server.Modules(mounted)

	apiPrefix := config.GetAPIPrefix()
	humaConfig := server.HumaConfig()
	if apiPrefix == "" {
		server.Mount(humachi.New(r, humaConfig), r, mounted)
	} else {
		r.Route(apiPrefix, func(prefixRouter chi.Router) {
			server.Mount(humachi.New(prefixRouter, humaConfig), r, mounted)
		})
	}

	ctx, cancelBackground := context.WithCancel(context.Background())
	for _, mod := range modules {
		go mod.StartBackgroundTasks(ctx)
	}

	port := app.GetPort("8080")
	host := config.GetHost()
	srv := &http.Server{
		Addr:         host + ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Starting Stormbringer API server", "addr", srv.Addr, "openapi", apiPrefix+"/openapi.json")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Received shutdown signal, initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	cancelBackground()
	for _, mod := range modules {
		mod.Stop()
	}

	if err := appCtx.Shutdown(shutdownCtx); err != nil {
		slog.Error("Application shutdown failed", "error", err)
	}
	slog.Info("Stormbringer shutdown completed")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	info := version.Get()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":     "healthy",
		"service":    serviceName,
		"version":    info.Version,
		"git_commit": info.GitCommit,
		"build_date": info.BuildDate,
		"go_version": info.GoVersion,
		"platform":   info.Platform,
	})
}
