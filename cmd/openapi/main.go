package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"stormbringer/internal/server"
	userServices "stormbringer/internal/users/services"
	"stormbringer/pkg/config"
	"stormbringer/pkg/docstore"
	"stormbringer/pkg/middleware"
	"stormbringer/pkg/version"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
)

func main() {
	var (
		output    = flag.String("o", "stormbringer-openapi.json", "Output file, - for stdout")
		format    = flag.String("format", "json", "Output format: json or yaml")
		downgrade = flag.Bool("downgrade", false, "Emit OpenAPI 3.0.3 instead of 3.1")
		serverURL = flag.String("server", "", "Server URL added to the description")
	)
	flag.Parse()

	fmt.Fprintln(os.Stderr, "🚀 Stormbringer OpenAPI Exporter")
	fmt.Fprintf(os.Stderr, "📦 Version: %s\n", version.GetVersionString())

	api := describe(*serverURL)

	data, err := render(api.OpenAPI(), *format, *downgrade)
	if err != nil {
		log.Fatalf("❌ Failed to render specification: %v", err)
	}

	if *output == "-" {
		_, _ = os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		log.Fatalf("❌ Failed to write specification: %v", err)
	}
	fmt.Fprintf(os.Stderr, "✅ OpenAPI specification with %d paths exported to: %s\n", len(api.OpenAPI().Paths), *output)
}

// describe registers every module on an in-memory backend so the description
// needs no database
func describe(serverURL string) huma.API {
	humaConfig := server.HumaConfig()
	if serverURL != "" {
		humaConfig.Servers = []*huma.Server{{URL: serverURL + config.GetAPIPrefix()}}
	}

	api := humachi.New(chi.NewRouter(), humaConfig)
	server.Mount(api, nil, server.NewModules(server.Dependencies{
		Store:      docstore.NewMemoryStore(),
		Tokens:     userServices.NewTokenService([]byte("openapi"), config.GetJWTTTL()),
		Authorizer: middleware.NewMemoryAuthorizer(),
	}))
	return api
}

func render(spec *huma.OpenAPI, format string, downgrade bool) ([]byte, error) {
	switch {
	case format == "yaml" && downgrade:
		return spec.DowngradeYAML()
	case format == "yaml":
		return spec.YAML()
	case format == "json" && downgrade:
		return spec.Downgrade()
	case format == "json":
		return json.MarshalIndent(spec, "", "  ")
	}
	return nil, fmt.Errorf("unknown format %q", format)
}
