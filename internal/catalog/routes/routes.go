package routes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"stormbringer/internal/catalog/dto"
	"stormbringer/internal/catalog/services"
	"stormbringer/pkg/middleware"

	"github.com/danielgtaylor/huma/v2"
)

var security = []map[string][]string{{"bearerAuth": {}}, {"cookieAuth": {}}}

// Routes exposes the reference catalog over the unified API
type Routes struct {
	service    *services.Service
	auth       *middleware.AuthMiddleware
	authorizer *middleware.Authorizer
}

// NewRoutes creates catalog routes
func NewRoutes(service *services.Service, auth *middleware.AuthMiddleware, authorizer *middleware.Authorizer) *Routes {
	return &Routes{
		service:    service,
		auth:       auth,
		authorizer: authorizer,
	}
}

// RegisterUnifiedRoutes registers all catalog operations under basePath
func (r *Routes) RegisterUnifiedRoutes(api huma.API, basePath string) {
	r.registerClassRoutes(api, basePath)
	r.registerNationalityRoutes(api, basePath)
	r.registerDeityRoutes(api, basePath)
	r.registerWeaponRoutes(api, basePath)
}

func (r *Routes) registerClassRoutes(api huma.API, basePath string) {
	huma.Register(api, huma.Operation{
		OperationID: "catalog-list-classes",
		Method:      "GET",
		Path:        basePath + "/classes",
		Summary:     "List classes",
		Description: "List every character class and variant ordered by name",
		Tags:        []string{"Catalog / Classes"},
		Security:    security,
	}, r.listClasses)

	huma.Register(api, huma.Operation{
		OperationID: "catalog-get-class",
		Method:      "GET",
		Path:        basePath + "/classes/{id}",
		Summary:     "Get class",
		Tags:        []string{"Catalog / Classes"},
		Security:    security,
	}, r.getClass)

	huma.Register(api, huma.Operation{
		OperationID: "catalog-create-class",
		Method:      "POST",
		Path:        basePath + "/classes",
		Summary:     "Create class",
		Description: "Create a base class or a variant of an existing base class (requires catalog:write)",
		Tags:        []string{"Catalog / Classes"},
		Security:    security,
	}, r.createClass)

	huma.Register(api, huma.Operation{
		OperationID: "catalog-update-class",
		Method:      "PUT",
		Path:        basePath + "/classes/{id}",
		Summary:     "Update class",
		Description: "Replace a class, keeping parent variant lists in step (requires catalog:write)",
		Tags:        []string{"Catalog / Classes"},
		Security:    security,
	}, r.updateClass)

	huma.Register(api, huma.Operation{
		OperationID: "catalog-delete-class",
		Method:      "DELETE",
		Path:        basePath + "/classes/{id}",
		Summary:     "Delete class",
		Description: "Delete a class; base classes with variants are refused (requires catalog:write)",
		Tags:        []string{"Catalog / Classes"},
		Security:    security,
	}, r.deleteClass)
}

func (r *Routes) registerNationalityRoutes(api huma.API, basePath string) {
	huma.Register(api, huma.Operation{
		OperationID: "catalog-list-nationalities",
		Method:      "GET",
		Path:        basePath + "/nationalities",
		Summary:     "List nationalities",
		Tags:        []string{"Catalog / Nationalities"},
		Security:    security,
	}, r.listNationalities)

	huma.Register(api, huma.Operation{
		OperationID: "catalog-roll-nationality",
		Method:      "GET",
		Path:        basePath + "/nationalities/roll",
		Summary:     "Roll nationality",
		Description: "Resolve a d100 roll on the nationality table",
		Tags:        []string{"Catalog / Nationalities"},
		Security:    security,
	}, r.rollNationality)

	huma.Register(api, huma.Operation{
		OperationID: "catalog-get-nationality",
		Method:      "GET",
		Path:        basePath + "/nationalities/{id}",
		Summary:     "Get nationality",
		Tags:        []string{"Catalog / Nationalities"},
		Security:    security,
	}, r.getNationality)

	huma.Register(api, huma.Operation{
		OperationID: "catalog-create-nationality",
		Method:      "POST",
		Path:        basePath + "/nationalities",
		Summary:     "Create nationality",
		Tags:        []string{"Catalog / Nationalities"},
		Security:    security,
	}, r.createNationality)

	huma.Register(api, huma.Operation{
		OperationID: "catalog-update-nationality",
		Method:      "PUT",
		Path:        basePath + "/nationalities/{id}",
		Summary:     "Update nationality",
		Tags:        []string{"Catalog / Nationalities"},
		Security:    security,
	}, r.updateNationality)

	huma.Register(api, huma.Operation{
		OperationID: "catalog-delete-nationality",
		Method:      "DELETE",
		Path:        basePath + "/nationalities/{id}",
		Summary:     "Delete nationality",
		Tags:        []string{"Catalog / Nationalities"},
		Security:    security,
	}, r.deleteNationality)
}

func (r *Routes) registerDeityRoutes(api huma.API, basePath string) {
	huma.Register(api, huma.Operation{
		OperationID: "catalog-list-deities",
		Method:      "GET",
		Path:        basePath + "/deities",
		Summary:     "List deities",
		Tags:        []string{"Catalog / Deities"},
		Security:    security,
	}, r.listDeities)

	huma.Register(api, huma.Operation{
		OperationID: "catalog-get-deity",
		Method:      "GET",
		Path:        basePath + "/deities/{id}",
		Summary:     "Get deity",
		Tags:        []string{"Catalog / Deities"},
		Security:    security,
	}, r.getDeity)

	huma.Register(api, huma.Operation{
		OperationID: "catalog-create-deity",
		Method:      "POST",
		Path:        basePath + "/deities",
		Summary:     "Create deity",
		Tags:        []string{"Catalog / Deities"},
		Security:    security,
	}, r.createDeity)

	huma.Register(api, huma.Operation{
		OperationID: "catalog-update-deity",
		Method:      "PUT",
		Path:        basePath + "/deities/{id}",
		Summary:     "Update deity",
		Tags:        []string{"Catalog / Deities"},
		Security:    security,
	}, r.updateDeity)

	huma.Register(api, huma.Operation{
		OperationID: "catalog-delete-deity",
		Method:      "DELETE",
		Path:        basePath + "/deities/{id}",
		Summary:     "Delete deity",
		Tags:        []string{"Catalog / Deities"},
		Security:    security,
	}, r.deleteDeity)
}

func (r *Routes) registerWeaponRoutes(api huma.API, basePath string) {
	huma.Register(api, huma.Operation{
		OperationID: "catalog-list-weapons",
		Method:      "GET",
		Path:        basePath + "/weapons",
		Summary:     "List weapons",
		Tags:        []string{"Catalog / Weapons"},
		Security:    security,
	}, r.listWeapons)

	huma.Register(api, huma.Operation{
		OperationID: "catalog-get-weapon",
		Method:      "GET",
		Path:        basePath + "/weapons/{id}",
		Summary:     "Get weapon",
		Tags:        []string{"Catalog / Weapons"},
		Security:    security,
	}, r.getWeapon)

	huma.Register(api, huma.Operation{
		OperationID: "catalog-create-weapon",
		Method:      "POST",
		Path:        basePath + "/weapons",
		Summary:     "Create weapon",
		Tags:        []string{"Catalog / Weapons"},
		Security:    security,
	}, r.createWeapon)

	huma.Register(api, huma.Operation{
		OperationID: "catalog-update-weapon",
		Method:      "PUT",
		Path:        basePath + "/weapons/{id}",
		Summary:     "Update weapon",
		Tags:        []string{"Catalog / Weapons"},
		Security:    security,
	}, r.updateWeapon)

	huma.Register(api, huma.Operation{
		OperationID: "catalog-delete-weapon",
		Method:      "DELETE",
		Path:        basePath + "/weapons/{id}",
		Summary:     "Delete weapon",
		Tags:        []string{"Catalog / Weapons"},
		Security:    security,
	}, r.deleteWeapon)
}

// requireRead authenticates the caller and checks catalog:read
func (r *Routes) requireRead(authHeader, cookieHeader string) error {
	return r.require(authHeader, cookieHeader, middleware.ActionRead)
}

// requireWrite authenticates the caller and checks catalog:write
func (r *Routes) requireWrite(authHeader, cookieHeader string) error {
	return r.require(authHeader, cookieHeader, middleware.ActionWrite)
}

func (r *Routes) require(authHeader, cookieHeader, action string) error {
	user, err := r.auth.ValidateAuthFromHeaders(authHeader, cookieHeader)
	if err != nil {
		return err
	}
	return r.authorizer.Require(user, middleware.ResourceCatalog, action)
}

// mapError converts service errors into API errors
func mapError(err error, what string) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, services.ErrNotFound):
		return huma.Error404NotFound(fmt.Sprintf("%s not found", what))
	case errors.Is(err, services.ErrVariantParent):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, services.ErrHasVariants):
		return huma.Error409Conflict(err.Error())
	default:
		slog.Error("Catalog operation failed", "entity", what, "error", err)
		return huma.Error500InternalServerError(fmt.Sprintf("Failed to process %s", what), err)
	}
}

func deleted(what string) *dto.DeleteOutput {
	return &dto.DeleteOutput{Body: dto.DeleteResponse{Success: true, Message: fmt.Sprintf("%s deleted", what)}}
}

func (r *Routes) listClasses(ctx context.Context, input *dto.ListInput) (*dto.ClassListOutput, error) {
	if err := r.requireRead(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	classes, err := r.service.ListClasses(ctx)
	if err != nil {
		return nil, mapError(err, "classes")
	}
	return &dto.ClassListOutput{Body: dto.ClassListResponse{Classes: classes, Total: len(classes)}}, nil
}

func (r *Routes) getClass(ctx context.Context, input *dto.IDInput) (*dto.ClassOutput, error) {
	if err := r.requireRead(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	class, err := r.service.GetClass(ctx, input.ID)
	if err != nil {
		return nil, mapError(err, "class")
	}
	if class == nil {
		return nil, huma.Error404NotFound("class not found")
	}
	return &dto.ClassOutput{Body: *class}, nil
}

func (r *Routes) createClass(ctx context.Context, input *dto.CreateClassInput) (*dto.ClassOutput, error) {
	if err := r.requireWrite(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	class, err := r.service.CreateClass(ctx, input.Body)
	if err != nil {
		return nil, mapError(err, "class")
	}
	return &dto.ClassOutput{Body: *class}, nil
}

func (r *Routes) updateClass(ctx context.Context, input *dto.UpdateClassInput) (*dto.ClassOutput, error) {
	if err := r.requireWrite(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	class, err := r.service.UpdateClass(ctx, input.ID, input.Body)
	if err != nil {
		return nil, mapError(err, "class")
	}
	return &dto.ClassOutput{Body: *class}, nil
}

func (r *Routes) deleteClass(ctx context.Context, input *dto.IDInput) (*dto.DeleteOutput, error) {
	if err := r.requireWrite(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	if err := r.service.DeleteClass(ctx, input.ID); err != nil {
		return nil, mapError(err, "class")
	}
	return deleted("class"), nil
}

func (r *Routes) listNationalities(ctx context.Context, input *dto.ListInput) (*dto.NationalityListOutput, error) {
	if err := r.requireRead(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	nats, err := r.service.ListNationalities(ctx)
	if err != nil {
		return nil, mapError(err, "nationalities")
	}
	return &dto.NationalityListOutput{Body: dto.NationalityListResponse{Nationalities: nats, Total: len(nats)}}, nil
}

func (r *Routes) rollNationality(ctx context.Context, input *dto.RollNationalityInput) (*dto.NationalityRollOutput, error) {
	if err := r.requireRead(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	result, err := r.service.RollNationality(ctx, input.Roll)
	if err != nil {
		return nil, mapError(err, "nationality")
	}
	return &dto.NationalityRollOutput{Body: *result}, nil
}

func (r *Routes) getNationality(ctx context.Context, input *dto.IDInput) (*dto.NationalityOutput, error) {
	if err := r.requireRead(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	nat, err := r.service.GetNationality(ctx, input.ID)
	if err != nil {
		return nil, mapError(err, "nationality")
	}
	if nat == nil {
		return nil, huma.Error404NotFound("nationality not found")
	}
	return &dto.NationalityOutput{Body: *nat}, nil
}

func (r *Routes) createNationality(ctx context.Context, input *dto.CreateNationalityInput) (*dto.NationalityOutput, error) {
	if err := r.requireWrite(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	nat, err := r.service.CreateNationality(ctx, input.Body)
	if err != nil {
		return nil, mapError(err, "nationality")
	}
	return &dto.NationalityOutput{Body: *nat}, nil
}

func (r *Routes) updateNationality(ctx context.Context, input *dto.UpdateNationalityInput) (*dto.NationalityOutput, error) {
	if err := r.requireWrite(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	nat, err := r.service.UpdateNationality(ctx, input.ID, input.Body)
	if err != nil {
		return nil, mapError(err, "nationality")
	}
	return &dto.NationalityOutput{Body: *nat}, nil
}

func (r *Routes) deleteNationality(ctx context.Context, input *dto.IDInput) (*dto.DeleteOutput, error) {
	if err := r.requireWrite(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	if err := r.service.DeleteNationality(ctx, input.ID); err != nil {
		return nil, mapError(err, "nationality")
	}
	return deleted("nationality"), nil
}

func (r *Routes) listDeities(ctx context.Context, input *dto.ListInput) (*dto.DeityListOutput, error) {
	if err := r.requireRead(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	deities, err := r.service.ListDeities(ctx)
	if err != nil {
		return nil, mapError(err, "deities")
	}
	return &dto.DeityListOutput{Body: dto.DeityListResponse{Deities: deities, Total: len(deities)}}, nil
}

func (r *Routes) getDeity(ctx context.Context, input *dto.IDInput) (*dto.DeityOutput, error) {
	if err := r.requireRead(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	deity, err := r.service.GetDeity(ctx, input.ID)
	if err != nil {
		return nil, mapError(err, "deity")
	}
	if deity == nil {
		return nil, huma.Error404NotFound("deity not found")
	}
	return &dto.DeityOutput{Body: *deity}, nil
}

func (r *Routes) createDeity(ctx context.Context, input *dto.CreateDeityInput) (*dto.DeityOutput, error) {
	if err := r.requireWrite(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	deity, err := r.service.SaveDeity(ctx, "", input.Body)
	if err != nil {
		return nil, mapError(err, "deity")
	}
	return &dto.DeityOutput{Body: *deity}, nil
}

func (r *Routes) updateDeity(ctx context.Context, input *dto.UpdateDeityInput) (*dto.DeityOutput, error) {
	if err := r.requireWrite(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	deity, err := r.service.SaveDeity(ctx, input.ID, input.Body)
	if err != nil {
		return nil, mapError(err, "deity")
	}
	return &dto.DeityOutput{Body: *deity}, nil
}

func (r *Routes) deleteDeity(ctx context.Context, input *dto.IDInput) (*dto.DeleteOutput, error) {
	if err := r.requireWrite(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	if err := r.service.DeleteDeity(ctx, input.ID); err != nil {
		return nil, mapError(err, "deity")
	}
	return deleted("deity"), nil
}

func (r *Routes) listWeapons(ctx context.Context, input *dto.ListInput) (*dto.WeaponListOutput, error) {
	if err := r.requireRead(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	weapons, err := r.service.ListWeapons(ctx)
	if err != nil {
		return nil, mapError(err, "weapons")
	}
	return &dto.WeaponListOutput{Body: dto.WeaponListResponse{Weapons: weapons, Total: len(weapons)}}, nil
}

func (r *Routes) getWeapon(ctx context.Context, input *dto.IDInput) (*dto.WeaponOutput, error) {
	if err := r.requireRead(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	weapon, err := r.service.GetWeapon(ctx, input.ID)
	if err != nil {
		return nil, mapError(err, "weapon")
	}
	if weapon == nil {
		return nil, huma.Error404NotFound("weapon not found")
	}
	return &dto.WeaponOutput{Body: *weapon}, nil
}

func (r *Routes) createWeapon(ctx context.Context, input *dto.CreateWeaponInput) (*dto.WeaponOutput, error) {
	if err := r.requireWrite(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	weapon, err := r.service.SaveWeapon(ctx, "", input.Body)
	if err != nil {
		return nil, mapError(err, "weapon")
	}
	return &dto.WeaponOutput{Body: *weapon}, nil
}

func (r *Routes) updateWeapon(ctx context.Context, input *dto.UpdateWeaponInput) (*dto.WeaponOutput, error) {
	if err := r.requireWrite(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	weapon, err := r.service.SaveWeapon(ctx, input.ID, input.Body)
	if err != nil {
		return nil, mapError(err, "weapon")
	}
	return &dto.WeaponOutput{Body: *weapon}, nil
}

func (r *Routes) deleteWeapon(ctx context.Context, input *dto.IDInput) (*dto.DeleteOutput, error) {
	if err := r.requireWrite(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}
	if err := r.service.DeleteWeapon(ctx, input.ID); err != nil {
		return nil, mapError(err, "weapon")
	}
	return deleted("weapon"), nil
}
