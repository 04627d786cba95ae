package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"stormbringer/internal/campaign/dto"
	"stormbringer/internal/campaign/models"
	"stormbringer/pkg/docstore"
	"stormbringer/pkg/handlers"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// ErrNotFound is returned when the campaign does not exist
	ErrNotFound = errors.New("campaign not found")
	// ErrForbidden is returned when the caller may not act on the campaign
	ErrForbidden = errors.New("not allowed on this campaign")
	// ErrInvalidInput wraps request validation failures
	ErrInvalidInput = errors.New("invalid campaign input")
	// ErrDMRemoval is returned when removing the DM from the roster
	ErrDMRemoval = errors.New("the DM cannot leave the roster")
)

// reminderWindow is how far ahead a scheduled session is announced
const reminderWindow = 24 * time.Hour

// Service handles campaign business logic. Reads fall back to the caller's
// session cache; writes propagate store errors without retrying.
type Service struct {
	repo     *Repository
	caches   CacheProvider
	now      func() time.Time
	newToken func() (string, error)
}

// NewService creates a new campaign service
func NewService(repo *Repository, caches CacheProvider) *Service {
	return &Service{
		repo:     repo,
		caches:   caches,
		now:      func() time.Time { return time.Now().UTC() },
		newToken: func() (string, error) { return gonanoid.New() },
	}
}

func (s *Service) cache(ctx context.Context) SessionCache {
	return s.caches.ForSession(SessionFromContext(ctx))
}

// CreateCampaign creates a campaign run by ownerID and mirrors it into the
// session cache
func (s *Service) CreateCampaign(ctx context.Context, req dto.CreateCampaignRequest, ownerID string) (*models.Campaign, error) {
	if err := dto.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	token, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	now := s.now()
	c := &models.Campaign{
		ID:               s.repo.NewID(),
		Name:             req.Name,
		Description:      req.Description,
		DMID:             ownerID,
		Players:          []string{ownerID},
		Status:           models.StatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
		Files:            []string{},
		Chats:            []models.ChatMessage{},
		AccessLink:       models.AccessLinkPrefix + token,
		PlayerCharacters: map[string]string{},
	}
	if req.NextSessionDate != nil {
		t := req.NextSessionDate.UTC()
		c.NextSessionDate = &t
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	if err := s.cache(ctx).UpsertFront(ctx, c); err != nil {
		slog.WarnContext(ctx, "Failed to cache created campaign", "campaign_id", c.ID, "error", err)
	}

	slog.InfoContext(ctx, "Campaign created", "campaign_id", c.ID, "dm_id", ownerID)
	return c, nil
}

// GetCampaign returns the campaign with id, or nil when neither the store
// nor the session cache has it. Integrity failures are never masked.
func (s *Service) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	c, err := s.repo.Get(ctx, id)
	if err == nil && c != nil {
		return c, nil
	}
	if errors.Is(err, ErrIntegrity) {
		return nil, err
	}

	cached, ok, cerr := s.cache(ctx).Get(ctx, id)
	if cerr != nil {
		slog.WarnContext(ctx, "Session cache read failed", "campaign_id", id, "error", cerr)
	}
	if ok {
		slog.WarnContext(ctx, "Serving campaign from session cache", "campaign_id", id, "store_error", err)
		return cached, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, nil
}

// GetUserCampaigns returns every campaign userID plays in, newest first,
// including cached campaigns a fresh read does not show yet
func (s *Service) GetUserCampaigns(ctx context.Context, userID string) ([]models.Campaign, error) {
	ctx, span := handlers.StartSpan(ctx, "campaigns.list", attribute.String("user.id", userID))
	defer span.End()

	cached, cerr := s.cache(ctx).List(ctx)
	if cerr != nil {
		slog.WarnContext(ctx, "Session cache read failed", "error", cerr)
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		if cerr != nil {
			return nil, err
		}
		slog.WarnContext(ctx, "Serving campaign list from session cache", "user_id", userID, "error", err)
		result := withPlayer(cached, userID)
		sortByUpdated(result)
		return result, nil
	}

	result := withPlayer(all, userID)
	seen := make(map[string]bool, len(result))
	for i := range result {
		seen[result[i].ID] = true
	}
	for _, c := range withPlayer(cached, userID) {
		if !seen[c.ID] {
			seen[c.ID] = true
			result = append(result, c)
		}
	}
	sortByUpdated(result)
	return result, nil
}

// UpdateCampaign writes a partial update and returns the merged patch without
// re-reading the campaign. Last writer wins.
func (s *Service) UpdateCampaign(ctx context.Context, id string, req dto.UpdateCampaignRequest) (*models.Patch, error) {
	if err := dto.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.ClearNextSessionDate && req.NextSessionDate != nil {
		return nil, fmt.Errorf("%w: nextSessionDate and clearNextSessionDate are exclusive", ErrInvalidInput)
	}

	patch := &models.Patch{
		ID:                   id,
		Name:                 req.Name,
		Description:          req.Description,
		NextSessionDate:      req.NextSessionDate,
		ClearNextSessionDate: req.ClearNextSessionDate,
		Files:                req.Files,
	}
	if req.Status != nil {
		status := models.Status(*req.Status)
		patch.Status = &status
	}
	return s.applyPatch(ctx, patch)
}

// SetStatus moves the campaign to status. Every transition is allowed.
func (s *Service) SetStatus(ctx context.Context, id string, status models.Status) (*models.Patch, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.applyPatch(ctx, &models.Patch{ID: id, Status: &status})
}

// ScheduleSession sets the next session, or clears it when at is nil
func (s *Service) ScheduleSession(ctx context.Context, id string, at *time.Time) (*models.Patch, error) {
	return s.applyPatch(ctx, &models.Patch{ID: id, NextSessionDate: at, ClearNextSessionDate: at == nil})
}

func (s *Service) applyPatch(ctx context.Context, patch *models.Patch) (*models.Patch, error) {
	patch.UpdatedAt = s.now()
	if patch.NextSessionDate != nil {
		t := patch.NextSessionDate.UTC()
		patch.NextSessionDate = &t
	}

	if err := s.repo.Update(ctx, patch.ID, patch.Fields()); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	cache := s.cache(ctx)
	cached, ok, err := cache.Get(ctx, patch.ID)
	if err == nil && ok {
		patch.ApplyTo(cached)
		err = cache.UpsertFront(ctx, cached)
	}
	if err != nil {
		slog.WarnContext(ctx, "Failed to refresh cached campaign", "campaign_id", patch.ID, "error", err)
	}
	return patch, nil
}

// DeleteCampaign removes the campaign. Chats and character references are
// left as they are.
func (s *Service) DeleteCampaign(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache(ctx).Remove(ctx, id); err != nil {
		slog.WarnContext(ctx, "Failed to drop cached campaign", "campaign_id", id, "error", err)
	}
	slog.InfoContext(ctx, "Campaign deleted", "campaign_id", id)
	return nil
}

// AddChatMessage appends a new message to the campaign chat
func (s *Service) AddChatMessage(ctx context.Context, campaignID, userID, userName, text string) (*models.ChatMessage, error) {
	if err := dto.Validate(dto.ChatMessageRequest{Text: text}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		UserName:  userName,
		Text:      text,
		Timestamp: s.now(),
	}
	if err := s.repo.AppendChat(ctx, campaignID, msg); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// ListChats returns the campaign chat in posting order
func (s *Service) ListChats(ctx context.Context, campaignID string) ([]models.ChatMessage, error) {
	c, err := s.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c.Chats, nil
}

// GetCampaignByAccessLink resolves an invite token, or a full access link,
// to its campaign. It returns nil when nothing matches.
func (s *Service) GetCampaignByAccessLink(ctx context.Context, token string) (*models.Campaign, error) {
	token = strings.TrimPrefix(strings.TrimSpace(token), models.AccessLinkPrefix)
	if token == "" {
		return nil, nil
	}

	matches, err := s.repo.FindByAccessLink(ctx, models.AccessLinkPrefix+token)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	if len(matches) > 1 {
		slog.WarnContext(ctx, "Access link matches several campaigns", "matches", len(matches))
	}
	return &matches[0], nil
}

// AddPlayerToCampaign puts userID on the roster with characterID. Joining
// twice is a no-op.
func (s *Service) AddPlayerToCampaign(ctx context.Context, campaignID, userID, characterID string) (*models.Campaign, error) {
	c, err := s.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	if c.HasPlayer(userID) {
		return c, nil
	}

	now := s.now()
	if err := s.repo.AddPlayer(ctx, campaignID, userID, characterID, now); err != nil {
		return nil, err
	}
	c.Players = append(c.Players, userID)
	if characterID != "" {
		c.PlayerCharacters[userID] = characterID
	}
	c.UpdatedAt = now

	slog.InfoContext(ctx, "Player joined campaign", "campaign_id", campaignID, "user_id", userID, "character_id", characterID)
	return c, nil
}

// RemovePlayerFromCampaign takes userID off the roster
func (s *Service) RemovePlayerFromCampaign(ctx context.Context, campaignID, userID string) (*models.Campaign, error) {
	c, err := s.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	if c.IsDM(userID) {
		return nil, ErrDMRemoval
	}
	if !c.HasPlayer(userID) {
		return c, nil
	}

	characters := make(map[string]string, len(c.PlayerCharacters))
	for k, v := range c.PlayerCharacters {
		if k != userID {
			characters[k] = v
		}
	}
	now := s.now()
	if err := s.repo.RemovePlayer(ctx, campaignID, userID, now); err != nil {
		return nil, err
	}

	players := make([]string, 0, len(c.Players))
	for _, p := range c.Players {
		if p != userID {
			players = append(players, p)
		}
	}
	c.Players = players
	c.PlayerCharacters = characters
	c.UpdatedAt = now
	return c, nil
}

// AddFile attaches a file link to the campaign
func (s *Service) AddFile(ctx context.Context, campaignID, url string) error {
	if err := dto.Validate(dto.FileRequest{URL: url}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.repo.AddFile(ctx, campaignID, url, s.now()); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ClearSessionCache empties the caller's session cache
func (s *Service) ClearSessionCache(ctx context.Context) error {
	return s.cache(ctx).Clear(ctx)
}

// SendReminders announces every session starting within the next day that
// has not been announced yet, and returns how many were sent
func (s *Service) SendReminders(ctx context.Context) (int, error) {
	ctx, span := handlers.StartSpan(ctx, "campaigns.reminders")
	defer span.End()

	campaigns, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	now := s.now()
	sent := 0
	for i := range campaigns {
		c := &campaigns[i]
		if c.NextSessionDate == nil || c.LastReminderAt != nil || c.Status != models.StatusActive {
			continue
		}
		until := c.NextSessionDate.Sub(now)
		if until < 0 || until > reminderWindow {
			continue
		}

		slog.InfoContext(ctx, "Upcoming campaign session",
			"campaign_id", c.ID,
			"campaign_name", c.Name,
			"next_session", c.NextSessionDate,
			"players", len(c.Players))
		if err := s.repo.Update(ctx, c.ID, map[string]any{"lastReminderAt": now}); err != nil {
			return sent, err
		}
		sent++
	}
	span.SetAttributes(attribute.Int("reminders.sent", sent))
	return sent, nil
}

func withPlayer(campaigns []models.Campaign, userID string) []models.Campaign {
	out := make([]models.Campaign, 0, len(campaigns))
	for i := range campaigns {
		if campaigns[i].HasPlayer(userID) {
			out = append(out, campaigns[i])
		}
	}
	return out
}

func sortByUpdated(campaigns []models.Campaign) {
	sort.SliceStable(campaigns, func(i, j int) bool {
		return campaigns[i].UpdatedAt.After(campaigns[j].UpdatedAt)
	})
}
