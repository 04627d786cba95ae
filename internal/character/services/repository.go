package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"stormbringer/internal/character/models"
	"stormbringer/pkg/docstore"
)

// Repository handles data persistence for characters
type Repository struct {
	store docstore.Store
}

// NewRepository creates a new repository instance
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// GetCharacter retrieves a character by id, nil when it does not exist
func (r *Repository) GetCharacter(ctx context.Context, id string) (*models.Character, error) {
	doc, err := r.store.Get(ctx, models.CharactersCollection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get character %s: %w", id, err)
	}

	var character models.Character
	if err := docstore.Decode(doc, &character); err != nil {
		return nil, err
	}
	return &character, nil
}

// ListByOwner returns the characters of ownerID, most recently updated first
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]models.Character, error) {
	docs, err := r.store.Query(ctx, models.CharactersCollection, docstore.Where{Field: "ownerId", Value: ownerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list characters of %s: %w", ownerID, err)
	}

	characters := make([]models.Character, 0, len(docs))
	for i := range docs {
		var c models.Character
		if err := docstore.Decode(&docs[i], &c); err != nil {
			slog.WarnContext(ctx, "Skipping undecodable character", "character_id", docs[i].ID, "error", err)
			continue
		}
		characters = append(characters, c)
	}

	sort.SliceStable(characters, func(i, j int) bool {
		return characters[i].UpdatedAt.After(characters[j].UpdatedAt)
	})
	return characters, nil
}

// SaveCharacter creates or replaces a character
func (r *Repository) SaveCharacter(ctx context.Context, character *models.Character) error {
	fields, err := docstore.Encode(character)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, models.CharactersCollection, character.ID, fields); err != nil {
		slog.ErrorContext(ctx, "Failed to save character", "character_id", character.ID, "error", err)
		return fmt.Errorf("failed to save character %s: %w", character.ID, err)
	}
	return nil
}

// DeleteCharacter removes a character
func (r *Repository) DeleteCharacter(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, models.CharactersCollection, id); err != nil {
		slog.ErrorContext(ctx, "Failed to delete character", "character_id", id, "error", err)
		return fmt.Errorf("failed to delete character %s: %w", id, err)
	}
	return nil
}
