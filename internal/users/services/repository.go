package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stormbringer/internal/users/models"
	"stormbringer/pkg/docstore"
)

// Repository handles user persistence
type Repository struct {
	store docstore.Store
}

// NewRepository creates a new user repository
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// GetUser returns the user with id, nil when it does not exist
func (r *Repository) GetUser(ctx context.Context, id string) (*models.User, error) {
	doc, err := r.store.Get(ctx, models.UsersCollection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	var user models.User
	if err := docstore.Decode(doc, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsernameKey returns the user whose folded username is key
func (r *Repository) FindByUsernameKey(ctx context.Context, key string) (*models.User, error) {
	docs, err := r.store.Query(ctx, models.UsersCollection, docstore.Where{Field: "usernameKey", Value: key})
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	var user models.User
	if err := docstore.Decode(&docs[0], &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser stores a new user
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	fields, err := docstore.Encode(user)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, models.UsersCollection, user.ID, fields); err != nil {
		slog.ErrorContext(ctx, "Failed to create user", "user_id", user.ID, "error", err)
		return fmt.Errorf("failed to create user %s: %w", user.ID, err)
	}
	return nil
}

// TouchLogin records a successful login
func (r *Repository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	if err := r.store.Update(ctx, models.UsersCollection, id, map[string]any{"lastLogin": at}); err != nil {
		slog.ErrorContext(ctx, "Failed to record login", "user_id", id, "error", err)
		return fmt.Errorf("failed to record login of %s: %w", id, err)
	}
	return nil
}

// RunTransaction runs fn atomically when the store supports it
func (r *Repository) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	err := r.store.RunTransaction(ctx, fn)
	if errors.Is(err, docstore.ErrTransactionsUnsupported) {
		slog.WarnContext(ctx, "Store lacks transactions, registering without one")
		return fn(ctx)
	}
	return err
}
