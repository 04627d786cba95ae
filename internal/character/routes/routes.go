package routes

import (
	"context"
	"errors"
	"log/slog"

	"stormbringer/internal/character/dto"
	"stormbringer/internal/character/services"
	"stormbringer/pkg/middleware"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterCharacterRoutes registers character routes on the shared API
func RegisterCharacterRoutes(api huma.API, basePath string, service *services.Service, auth *middleware.AuthMiddleware, authorizer *middleware.Authorizer) {
	h := &handlers{service: service, auth: auth, authorizer: authorizer}
	security := []map[string][]string{{"bearerAuth": {}}, {"cookieAuth": {}}}

	huma.Register(api, huma.Operation{
		OperationID: "characters-list",
		Method:      "GET",
		Path:        basePath,
		Summary:     "List my characters",
		Description: "List the caller's characters, most recently updated first",
		Tags:        []string{"Characters"},
		Security:    security,
	}, h.list)

	huma.Register(api, huma.Operation{
		OperationID: "characters-create",
		Method:      "POST",
		Path:        basePath,
		Summary:     "Create character",
		Description: "Submit the creation wizard: nationality bonuses, class resolution and class bonuses are applied before the character is stored",
		Tags:        []string{"Characters"},
		Security:    security,
	}, h.create)

	huma.Register(api, huma.Operation{
		OperationID: "characters-preview",
		Method:      "POST",
		Path:        basePath + "/preview",
		Summary:     "Preview character derivation",
		Description: "Run the creation wizard pipeline without storing the result",
		Tags:        []string{"Characters"},
		Security:    security,
	}, h.preview)

	huma.Register(api, huma.Operation{
		OperationID: "characters-class-options",
		Method:      "GET",
		Path:        basePath + "/class-options",
		Summary:     "Class options for a nationality",
		Description: "Returns the classes a nationality offers and whether the random class roll is allowed",
		Tags:        []string{"Characters / Rules"},
		Security:    security,
	}, h.classOptions)

	huma.Register(api, huma.Operation{
		OperationID: "characters-roll-class",
		Method:      "GET",
		Path:        basePath + "/class-roll",
		Summary:     "Roll class",
		Description: "Resolve a d100 roll on the class table",
		Tags:        []string{"Characters / Rules"},
		Security:    security,
	}, h.rollClass)

	huma.Register(api, huma.Operation{
		OperationID: "characters-get",
		Method:      "GET",
		Path:        basePath + "/{id}",
		Summary:     "Get character",
		Tags:        []string{"Characters"},
		Security:    security,
	}, h.get)

	huma.Register(api, huma.Operation{
		OperationID: "characters-update",
		Method:      "PUT",
		Path:        basePath + "/{id}",
		Summary:     "Update character",
		Description: "Replace the sheet of one of the caller's characters",
		Tags:        []string{"Characters"},
		Security:    security,
	}, h.update)

	huma.Register(api, huma.Operation{
		OperationID: "characters-delete",
		Method:      "DELETE",
		Path:        basePath + "/{id}",
		Summary:     "Delete character",
		Tags:        []string{"Characters"},
		Security:    security,
	}, h.delete)

	huma.Register(api, huma.Operation{
		OperationID: "characters-apply-class",
		Method:      "POST",
		Path:        basePath + "/{id}/apply-class",
		Summary:     "Apply class",
		Description: "Apply a catalog class's characteristic bonuses and abilities to a character",
		Tags:        []string{"Characters"},
		Security:    security,
	}, h.applyClass)

	huma.Register(api, huma.Operation{
		OperationID: "characters-apply-nationality",
		Method:      "POST",
		Path:        basePath + "/{id}/apply-nationality",
		Summary:     "Apply nationality",
		Description: "Add a catalog nationality's bonuses to a character",
		Tags:        []string{"Characters"},
		Security:    security,
	}, h.applyNationality)
}

type handlers struct {
	service    *services.Service
	auth       *middleware.AuthMiddleware
	authorizer *middleware.Authorizer
}

func (h *handlers) authorize(authHeader, cookieHeader, action string) (*middleware.AuthenticatedUser, error) {
	user, err := h.auth.ValidateAuthFromHeaders(authHeader, cookieHeader)
	if err != nil {
		return nil, err
	}
	if err := h.authorizer.Require(user, middleware.ResourceCharacters, action); err != nil {
		return nil, err
	}
	return user, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrUnknownReference):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, services.ErrNotFound):
		return huma.Error404NotFound("Character not found")
	case errors.Is(err, services.ErrForbidden):
		return huma.Error403Forbidden("Only the owner can change this character")
	default:
		slog.Error("Character operation failed", "error", err)
		return huma.Error500InternalServerError("Failed to process character", err)
	}
}

func (h *handlers) list(ctx context.Context, input *dto.ListCharactersInput) (*dto.CharacterListOutput, error) {
	user, err := h.authorize(input.Authorization, input.Cookie, middleware.ActionRead)
	if err != nil {
		return nil, err
	}
	characters, err := h.service.ListByOwner(ctx, user.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.CharacterListOutput{Body: dto.CharacterListResponse{Characters: characters, Total: len(characters)}}, nil
}

func (h *handlers) create(ctx context.Context, input *dto.CreateCharacterInput) (*dto.DerivationOutput, error) {
	user, err := h.authorize(input.Authorization, input.Cookie, middleware.ActionWrite)
	if err != nil {
		return nil, err
	}
	resp, err := h.service.Create(ctx, user.UserID, input.Body)
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.DerivationOutput{Body: *resp}, nil
}

func (h *handlers) preview(ctx context.Context, input *dto.CreateCharacterInput) (*dto.DerivationOutput, error) {
	user, err := h.authorize(input.Authorization, input.Cookie, middleware.ActionRead)
	if err != nil {
		return nil, err
	}
	resp, err := h.service.Preview(ctx, user.UserID, input.Body)
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.DerivationOutput{Body: *resp}, nil
}

func (h *handlers) classOptions(ctx context.Context, input *dto.ClassOptionsInput) (*dto.ClassOptionsOutput, error) {
	if _, err := h.authorize(input.Authorization, input.Cookie, middleware.ActionRead); err != nil {
		return nil, err
	}
	return &dto.ClassOptionsOutput{Body: h.service.ClassOptions(input.Nationality)}, nil
}

func (h *handlers) rollClass(ctx context.Context, input *dto.RollClassInput) (*dto.ClassRollOutput, error) {
	if _, err := h.authorize(input.Authorization, input.Cookie, middleware.ActionRead); err != nil {
		return nil, err
	}
	class, err := h.service.RollClass(input.Roll)
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.ClassRollOutput{Body: dto.ClassRollResponse{Roll: input.Roll, Class: class}}, nil
}

func (h *handlers) get(ctx context.Context, input *dto.CharacterIDInput) (*dto.CharacterOutput, error) {
	if _, err := h.authorize(input.Authorization, input.Cookie, middleware.ActionRead); err != nil {
		return nil, err
	}
	character, err := h.service.Get(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if character == nil {
		return nil, huma.Error404NotFound("Character not found")
	}
	return &dto.CharacterOutput{Body: *character}, nil
}

func (h *handlers) update(ctx context.Context, input *dto.UpdateCharacterInput) (*dto.CharacterOutput, error) {
	user, err := h.authorize(input.Authorization, input.Cookie, middleware.ActionWrite)
	if err != nil {
		return nil, err
	}
	character, err := h.service.Update(ctx, input.ID, user.UserID, input.Body)
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.CharacterOutput{Body: *character}, nil
}

func (h *handlers) delete(ctx context.Context, input *dto.CharacterIDInput) (*dto.DeleteOutput, error) {
	user, err := h.authorize(input.Authorization, input.Cookie, middleware.ActionWrite)
	if err != nil {
		return nil, err
	}
	if err := h.service.Delete(ctx, input.ID, user.UserID); err != nil {
		return nil, mapError(err)
	}
	return &dto.DeleteOutput{Body: dto.DeleteResponse{Success: true, Message: "Character deleted"}}, nil
}

func (h *handlers) applyClass(ctx context.Context, input *dto.ApplyClassInput) (*dto.ApplyOutput, error) {
	user, err := h.authorize(input.Authorization, input.Cookie, middleware.ActionWrite)
	if err != nil {
		return nil, err
	}
	resp, err := h.service.ApplyClass(ctx, input.ID, user.UserID, input.Body.ClassID)
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.ApplyOutput{Body: *resp}, nil
}

func (h *handlers) applyNationality(ctx context.Context, input *dto.ApplyNationalityInput) (*dto.ApplyOutput, error) {
	user, err := h.authorize(input.Authorization, input.Cookie, middleware.ActionWrite)
	if err != nil {
		return nil, err
	}
	resp, err := h.service.ApplyNationality(ctx, input.ID, user.UserID, input.Body.NationalityID)
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.ApplyOutput{Body: *resp}, nil
}
