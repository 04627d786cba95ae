package routes

import (
	"context"
	"errors"
	"log/slog"

	"stormbringer/internal/campaign/dto"
	"stormbringer/internal/campaign/models"
	"stormbringer/internal/campaign/services"
	"stormbringer/pkg/middleware"

	"github.com/danielgtaylor/huma/v2"
)

var security = []map[string][]string{{"bearerAuth": {}}, {"cookieAuth": {}}}

const tag = "Campaigns"

// Routes exposes campaigns over the unified API
type Routes struct {
	service    *services.Service
	auth       *middleware.AuthMiddleware
	authorizer *middleware.Authorizer
}

// NewRoutes creates campaign routes
func NewRoutes(service *services.Service, auth *middleware.AuthMiddleware, authorizer *middleware.Authorizer) *Routes {
	return &Routes{service: service, auth: auth, authorizer: authorizer}
}

// RegisterUnifiedRoutes registers all campaign operations under basePath
func (r *Routes) RegisterUnifiedRoutes(api huma.API, basePath string) {
	huma.Register(api, huma.Operation{
		OperationID: "campaigns-list",
		Method:      "GET",
		Path:        basePath,
		Summary:     "List my campaigns",
		Description: "List the campaigns the caller plays in or runs, most recently updated first",
		Tags:        []string{tag},
		Security:    security,
	}, r.list)

	huma.Register(api, huma.Operation{
		OperationID: "campaigns-create",
		Method:      "POST",
		Path:        basePath,
		Summary:     "Create campaign",
		Description: "Create a campaign run by the caller, with a fresh invite link",
		Tags:        []string{tag},
		Security:    security,
	}, r.create)

	huma.Register(api, huma.Operation{
		OperationID: "campaigns-clear-session-cache",
		Method:      "DELETE",
		Path:        basePath + "/session-cache",
		Summary:     "Clear session cache",
		Description: "Drop every campaign cached for the caller's session",
		Tags:        []string{tag},
		Security:    security,
	}, r.clearSessionCache)

	huma.Register(api, huma.Operation{
		OperationID: "campaigns-get-by-access-link",
		Method:      "GET",
		Path:        basePath + "/join/{token}",
		Summary:     "Resolve invite",
		Description: "Find the campaign an invite token belongs to",
		Tags:        []string{tag},
		Security:    security,
	}, r.getByAccessLink)

	huma.Register(api, huma.Operation{
		OperationID: "campaigns-join",
		Method:      "POST",
		Path:        basePath + "/join",
		Summary:     "Join campaign",
		Description: "Join the campaign of an invite token with a character. Joining twice changes nothing.",
		Tags:        []string{tag},
		Security:    security,
	}, r.join)

	huma.Register(api, huma.Operation{
		OperationID: "campaigns-get",
		Method:      "GET",
		Path:        basePath + "/{id}",
		Summary:     "Get campaign",
		Tags:        []string{tag},
		Security:    security,
	}, r.get)

	huma.Register(api, huma.Operation{
		OperationID: "campaigns-update",
		Method:      "PATCH",
		Path:        basePath + "/{id}",
		Summary:     "Update campaign",
		Description: "Partially update a campaign. DM only.",
		Tags:        []string{tag},
		Security:    security,
	}, r.update)

	huma.Register(api, huma.Operation{
		OperationID: "campaigns-delete",
		Method:      "DELETE",
		Path:        basePath + "/{id}",
		Summary:     "Delete campaign",
		Description: "Delete a campaign. DM only.",
		Tags:        []string{tag},
		Security:    security,
	}, r.delete)

	huma.Register(api, huma.Operation{
		OperationID: "campaigns-list-chats",
		Method:      "GET",
		Path:        basePath + "/{id}/chats",
		Summary:     "List chat",
		Tags:        []string{tag},
		Security:    security,
	}, r.listChats)

	huma.Register(api, huma.Operation{
		OperationID: "campaigns-add-chat",
		Method:      "POST",
		Path:        basePath + "/{id}/chats",
		Summary:     "Post chat message",
		Tags:        []string{tag},
		Security:    security,
	}, r.addChat)

	huma.Register(api, huma.Operation{
		OperationID: "campaigns-remove-player",
		Method:      "DELETE",
		Path:        basePath + "/{id}/players/{user_id}",
		Summary:     "Remove player",
		Description: "Remove a player from the roster. The DM may remove anyone but themself; players may leave.",
		Tags:        []string{tag},
		Security:    security,
	}, r.removePlayer)

	huma.Register(api, huma.Operation{
		OperationID: "campaigns-set-status",
		Method:      "PUT",
		Path:        basePath + "/{id}/status",
		Summary:     "Set status",
		Tags:        []string{tag},
		Security:    security,
	}, r.setStatus)

	huma.Register(api, huma.Operation{
		OperationID: "campaigns-schedule",
		Method:      "PUT",
		Path:        basePath + "/{id}/schedule",
		Summary:     "Schedule next session",
		Tags:        []string{tag},
		Security:    security,
	}, r.schedule)

	huma.Register(api, huma.Operation{
		OperationID: "campaigns-add-file",
		Method:      "POST",
		Path:        basePath + "/{id}/files",
		Summary:     "Attach file",
		Tags:        []string{tag},
		Security:    security,
	}, r.addFile)
}

// authenticate checks campaigns:<action> and scopes ctx to the caller's session
func (r *Routes) authenticate(ctx context.Context, authHeader, cookieHeader, action string) (context.Context, *middleware.AuthenticatedUser, error) {
	user, err := r.auth.ValidateAuthFromHeaders(authHeader, cookieHeader)
	if err != nil {
		return ctx, nil, err
	}
	if err := r.authorizer.Require(user, middleware.ResourceCampaigns, action); err != nil {
		return ctx, nil, err
	}
	return services.WithSession(ctx, user.SessionID), user, nil
}

// load returns the campaign when user is on its roster, and when dmOnly
// also its DM
func (r *Routes) load(ctx context.Context, id string, user *middleware.AuthenticatedUser, dmOnly bool) (*models.Campaign, error) {
	c, err := r.service.GetCampaign(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if c == nil {
		return nil, huma.Error404NotFound("Campaign not found")
	}
	if !c.HasPlayer(user.UserID) {
		return nil, huma.Error403Forbidden("You are not part of this campaign")
	}
	if dmOnly && !c.IsDM(user.UserID) {
		return nil, huma.Error403Forbidden("Only the DM can do this")
	}
	return c, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, services.ErrNotFound):
		return huma.Error404NotFound("Campaign not found")
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrDMRemoval):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, services.ErrIntegrity):
		slog.Error("Campaign failed integrity check", "error", err)
		return huma.Error500InternalServerError("Campaign data is corrupt", err)
	default:
		slog.Error("Campaign operation failed", "error", err)
		return huma.Error500InternalServerError("Failed to process campaign", err)
	}
}

func (r *Routes) list(ctx context.Context, input *dto.ListCampaignsInput) (*dto.CampaignListOutput, error) {
	ctx, user, err := r.authenticate(ctx, input.Authorization, input.Cookie, middleware.ActionRead)
	if err != nil {
		return nil, err
	}
	campaigns, err := r.service.GetUserCampaigns(ctx, user.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.CampaignListOutput{Body: dto.CampaignListResponse{Campaigns: campaigns, Total: len(campaigns)}}, nil
}

func (r *Routes) create(ctx context.Context, input *dto.CreateCampaignInput) (*dto.CampaignOutput, error) {
	ctx, user, err := r.authenticate(ctx, input.Authorization, input.Cookie, middleware.ActionWrite)
	if err != nil {
		return nil, err
	}
	c, err := r.service.CreateCampaign(ctx, input.Body, user.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.CampaignOutput{Body: *c}, nil
}

func (r *Routes) clearSessionCache(ctx context.Context, input *dto.SessionCacheInput) (*dto.StatusOutput, error) {
	ctx, _, err := r.authenticate(ctx, input.Authorization, input.Cookie, middleware.ActionRead)
	if err != nil {
		return nil, err
	}
	if err := r.service.ClearSessionCache(ctx); err != nil {
		return nil, mapError(err)
	}
	return &dto.StatusOutput{Body: dto.StatusResponse{Success: true, Message: "Session cache cleared"}}, nil
}

func (r *Routes) getByAccessLink(ctx context.Context, input *dto.AccessLinkInput) (*dto.CampaignOutput, error) {
	ctx, _, err := r.authenticate(ctx, input.Authorization, input.Cookie, middleware.ActionRead)
	if err != nil {
		return nil, err
	}
	c, err := r.service.GetCampaignByAccessLink(ctx, input.Token)
	if err != nil {
		return nil, mapError(err)
	}
	if c == nil {
		return nil, huma.Error404NotFound("Invite link not found")
	}
	return &dto.CampaignOutput{Body: *c}, nil
}

func (r *Routes) join(ctx context.Context, input *dto.JoinCampaignInput) (*dto.CampaignOutput, error) {
	ctx, user, err := r.authenticate(ctx, input.Authorization, input.Cookie, middleware.ActionWrite)
	if err != nil {
		return nil, err
	}
	c, err := r.service.GetCampaignByAccessLink(ctx, input.Body.Token)
	if err != nil {
		return nil, mapError(err)
	}
	if c == nil {
		return nil, huma.Error404NotFound("Invite link not found")
	}
	joined, err := r.service.AddPlayerToCampaign(ctx, c.ID, user.UserID, input.Body.CharacterID)
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.CampaignOutput{Body: *joined}, nil
}

func (r *Routes) get(ctx context.Context, input *dto.CampaignIDInput) (*dto.CampaignOutput, error) {
	ctx, user, err := r.authenticate(ctx, input.Authorization, input.Cookie, middleware.ActionRead)
	if err != nil {
		return nil, err
	}
	c, err := r.load(ctx, input.ID, user, false)
	if err != nil {
		return nil, err
	}
	return &dto.CampaignOutput{Body: *c}, nil
}

func (r *Routes) update(ctx context.Context, input *dto.UpdateCampaignInput) (*dto.PatchOutput, error) {
	ctx, user, err := r.authenticate(ctx, input.Authorization, input.Cookie, middleware.ActionWrite)
	if err != nil {
		return nil, err
	}
	if _, err := r.load(ctx, input.ID, user, true); err != nil {
		return nil, err
	}
	patch, err := r.service.UpdateCampaign(ctx, input.ID, input.Body)
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.PatchOutput{Body: *patch}, nil
}

func (r *Routes) delete(ctx context.Context, input *dto.CampaignIDInput) (*dto.StatusOutput, error) {
	ctx, user, err := r.authenticate(ctx, input.Authorization, input.Cookie, middleware.ActionWrite)
	if err != nil {
		return nil, err
	}
	if _, err := r.load(ctx, input.ID, user, true); err != nil {
		return nil, err
	}
	if err := r.service.DeleteCampaign(ctx, input.ID); err != nil {
		return nil, mapError(err)
	}
	return &dto.StatusOutput{Body: dto.StatusResponse{Success: true, Message: "Campaign deleted"}}, nil
}

func (r *Routes) listChats(ctx context.Context, input *dto.CampaignIDInput) (*dto.ChatListOutput, error) {
	ctx, user, err := r.authenticate(ctx, input.Authorization, input.Cookie, middleware.ActionRead)
	if err != nil {
		return nil, err
	}
	c, err := r.load(ctx, input.ID, user, false)
	if err != nil {
		return nil, err
	}
	return &dto.ChatListOutput{Body: dto.ChatListResponse{Messages: c.Chats, Total: len(c.Chats)}}, nil
}

func (r *Routes) addChat(ctx context.Context, input *dto.ChatMessageInput) (*dto.ChatMessageOutput, error) {
	ctx, user, err := r.authenticate(ctx, input.Authorization, input.Cookie, middleware.ActionWrite)
	if err != nil {
		return nil, err
	}
	if _, err := r.load(ctx, input.ID, user, false); err != nil {
		return nil, err
	}
	msg, err := r.service.AddChatMessage(ctx, input.ID, user.UserID, user.UserName, input.Body.Text)
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.ChatMessageOutput{Body: *msg}, nil
}

func (r *Routes) removePlayer(ctx context.Context, input *dto.RemovePlayerInput) (*dto.CampaignOutput, error) {
	ctx, user, err := r.authenticate(ctx, input.Authorization, input.Cookie, middleware.ActionWrite)
	if err != nil {
		return nil, err
	}
	leaving := input.UserID == user.UserID
	if _, err := r.load(ctx, input.ID, user, !leaving); err != nil {
		return nil, err
	}
	c, err := r.service.RemovePlayerFromCampaign(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.CampaignOutput{Body: *c}, nil
}

func (r *Routes) setStatus(ctx context.Context, input *dto.StatusInput) (*dto.PatchOutput, error) {
	ctx, user, err := r.authenticate(ctx, input.Authorization, input.Cookie, middleware.ActionWrite)
	if err != nil {
		return nil, err
	}
	if _, err := r.load(ctx, input.ID, user, true); err != nil {
		return nil, err
	}
	patch, err := r.service.SetStatus(ctx, input.ID, models.Status(input.Body.Status))
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.PatchOutput{Body: *patch}, nil
}

func (r *Routes) schedule(ctx context.Context, input *dto.ScheduleInput) (*dto.PatchOutput, error) {
	ctx, user, err := r.authenticate(ctx, input.Authorization, input.Cookie, middleware.ActionWrite)
	if err != nil {
		return nil, err
	}
	if _, err := r.load(ctx, input.ID, user, true); err != nil {
		return nil, err
	}
	patch, err := r.service.ScheduleSession(ctx, input.ID, input.Body.NextSessionDate)
	if err != nil {
		return nil, mapError(err)
	}
	return &dto.PatchOutput{Body: *patch}, nil
}

func (r *Routes) addFile(ctx context.Context, input *dto.FileInput) (*dto.StatusOutput, error) {
	ctx, user, err := r.authenticate(ctx, input.Authorization, input.Cookie, middleware.ActionWrite)
	if err != nil {
		return nil, err
	}
	if _, err := r.load(ctx, input.ID, user, true); err != nil {
		return nil, err
	}
	if err := r.service.AddFile(ctx, input.ID, input.Body.URL); err != nil {
		return nil, mapError(err)
	}
	return &dto.StatusOutput{Body: dto.StatusResponse{Success: true, Message: "File attached"}}, nil
}
