// Package server assembles the Stormbringer modules into one API.
package server

import (
	"stormbringer/internal/campaign"
	"stormbringer/internal/catalog"
	"stormbringer/internal/character"
	"stormbringer/internal/users"
	userServices "stormbringer/internal/users/services"
	"stormbringer/pkg/database"
	"stormbringer/pkg/docstore"
	"stormbringer/pkg/middleware"
	"stormbringer/pkg/module"
	"stormbringer/pkg/version"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

// Dependencies are the shared components every module is built on
type Dependencies struct {
	Store      docstore.Store
	MongoDB    *database.MongoDB
	Redis      *database.Redis
	Tokens     *userServices.TokenService
	Authorizer *middleware.Authorizer
}

// Mounted is a module with the base path of its API operations
type Mounted struct {
	Module   module.Module
	BasePath string
}

// NewModules builds the application modules
func NewModules(deps Dependencies) []Mounted {
	auth := middleware.NewAuthMiddleware(deps.Tokens)

	usersModule := users.New(deps.Store, deps.MongoDB, deps.Redis, deps.Tokens, auth, deps.Authorizer)
	catalogModule := catalog.NewModule(deps.Store, deps.MongoDB, deps.Redis, auth, deps.Authorizer)
	characterModule := character.New(deps.Store, deps.MongoDB, deps.Redis, catalogModule.GetService(), auth, deps.Authorizer)
	campaignModule := campaign.New(deps.Store, deps.MongoDB, deps.Redis, auth, deps.Authorizer)

	return []Mounted{
		{Module: usersModule, BasePath: "/users"},
		{Module: catalogModule, BasePath: "/catalog"},
		{Module: characterModule, BasePath: "/characters"},
		{Module: campaignModule, BasePath: "/campaigns"},
	}
}

// HumaConfig returns the API configuration with both auth schemes declared
func HumaConfig() huma.Config {
	config := huma.DefaultConfig("Stormbringer API", version.GetVersionString())
	config.Info.Description = "Character sheets, reference catalog and campaigns for Stormbringer"
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
		"cookieAuth": {Type: "apiKey", In: "cookie", Name: middleware.AuthCookieName},
	}
	return config
}

// Mount registers module operations on api and module health routes on r.
// r may be nil when only the API description is needed.
func Mount(api huma.API, r chi.Router, mounted []Mounted) {
	for _, m := range mounted {
		m.Module.RegisterUnifiedRoutes(api, m.BasePath)
		if r != nil {
			r.Route("/modules/"+m.Module.Name(), m.Module.Routes)
		}
	}
}

// Modules returns the bare modules of mounted
func Modules(mounted []Mounted) []module.Module {
	out := make([]module.Module, len(mounted))
	for i, m := range mounted {
		out[i] = m.Module
	}
	return out
}
