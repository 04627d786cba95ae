package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stormbringer/internal/campaign/models"
	"stormbringer/pkg/docstore"
)

// Repository handles campaign persistence. Reads return (nil, nil) for a
// missing campaign; writes log and return every store error.
type Repository struct {
	store docstore.Store
}

// NewRepository creates a new campaign repository
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// NewID issues a campaign id
func (r *Repository) NewID() string {
	return r.store.NewID()
}

// Get returns the campaign with id
func (r *Repository) Get(ctx context.Context, id string) (*models.Campaign, error) {
	doc, err := r.store.Get(ctx, models.CampaignsCollection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get campaign %s: %w", id, err)
	}
	return decodeCampaign(doc.ID, doc.Fields)
}

// List returns every campaign. Documents failing the integrity check are
// skipped with a warning.
func (r *Repository) List(ctx context.Context) ([]models.Campaign, error) {
	docs, err := r.store.Query(ctx, models.CampaignsCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return decodeAll(ctx, docs), nil
}

// FindByAccessLink returns every campaign whose access link equals link
func (r *Repository) FindByAccessLink(ctx context.Context, link string) ([]models.Campaign, error) {
	docs, err := r.store.Query(ctx, models.CampaignsCollection, docstore.Where{Field: "accessLink", Value: link})
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns by access link: %w", err)
	}
	return decodeAll(ctx, docs), nil
}

// Create writes a new campaign
func (r *Repository) Create(ctx context.Context, c *models.Campaign) error {
	if err := r.store.Set(ctx, models.CampaignsCollection, c.ID, campaignFields(c)); err != nil {
		return r.writeFailed(ctx, "create", c.ID, err)
	}
	return nil
}

// Update merges fields into the campaign with id
func (r *Repository) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := r.store.Update(ctx, models.CampaignsCollection, id, fields); err != nil {
		return r.writeFailed(ctx, "update", id, err)
	}
	return nil
}

// Delete removes the campaign with id
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, models.CampaignsCollection, id); err != nil {
		return r.writeFailed(ctx, "delete", id, err)
	}
	return nil
}

// AppendChat atomically appends msg to the chat log and bumps updatedAt
func (r *Repository) AppendChat(ctx context.Context, id string, msg models.ChatMessage) error {
	extra := map[string]any{"updatedAt": msg.Timestamp}
	if err := r.store.ArrayAppend(ctx, models.CampaignsCollection, id, "chats", chatFields(msg), extra); err != nil {
		return r.writeFailed(ctx, "append chat to", id, err)
	}
	return nil
}

// AddPlayer atomically adds userID to the roster and records the character
// the player joins with, in the same write
func (r *Repository) AddPlayer(ctx context.Context, id, userID, characterID string, at time.Time) error {
	extra := map[string]any{"updatedAt": at}
	if characterID != "" {
		extra["playerCharacters."+userID] = characterID
	}
	if err := r.store.ArrayUnion(ctx, models.CampaignsCollection, id, "players", userID, extra); err != nil {
		return r.writeFailed(ctx, "add player to", id, err)
	}
	return nil
}

// RemovePlayer atomically removes userID from the roster and drops only that
// player's character entry, leaving concurrent joins intact
func (r *Repository) RemovePlayer(ctx context.Context, id, userID string, at time.Time) error {
	extra := map[string]any{"updatedAt": at, "playerCharacters." + userID: docstore.Unset}
	if err := r.store.ArrayRemove(ctx, models.CampaignsCollection, id, "players", userID, extra); err != nil {
		return r.writeFailed(ctx, "remove player from", id, err)
	}
	return nil
}

// AddFile atomically adds url to the campaign files
func (r *Repository) AddFile(ctx context.Context, id, url string, at time.Time) error {
	if err := r.store.ArrayUnion(ctx, models.CampaignsCollection, id, "files", url, map[string]any{"updatedAt": at}); err != nil {
		return r.writeFailed(ctx, "add file to", id, err)
	}
	return nil
}

func (r *Repository) writeFailed(ctx context.Context, op, id string, err error) error {
	slog.ErrorContext(ctx, "Campaign write failed", "operation", op, "campaign_id", id, "error", err)
	return fmt.Errorf("failed to %s campaign %s: %w", op, id, err)
}

func decodeAll(ctx context.Context, docs []docstore.Document) []models.Campaign {
	out := make([]models.Campaign, 0, len(docs))
	for i := range docs {
		c, err := decodeCampaign(docs[i].ID, docs[i].Fields)
		if err != nil {
			slog.WarnContext(ctx, "Skipping campaign", "campaign_id", docs[i].ID, "error", err)
			continue
		}
		out = append(out, *c)
	}
	return out
}
