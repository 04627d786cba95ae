package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"stormbringer/pkg/docstore"
)

// Repository stores one catalog collection of T. T must carry an `_id`
// bson field so decoded entries expose their id.
type Repository[T any] struct {
	store      docstore.Store
	collection string
}

// NewRepository creates a repository over collection
func NewRepository[T any](store docstore.Store, collection string) *Repository[T] {
	return &Repository[T]{store: store, collection: collection}
}

// Get returns the entry with id, nil when it does not exist
func (r *Repository[T]) Get(ctx context.Context, id string) (*T, error) {
	doc, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s %s: %w", r.collection, id, err)
	}

	var out T
	if err := docstore.Decode(doc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns every entry ordered by name
func (r *Repository[T]) List(ctx context.Context, name func(*T) string) ([]T, error) {
	docs, err := r.store.Query(ctx, r.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.collection, err)
	}

	out := make([]T, 0, len(docs))
	for i := range docs {
		var item T
		if err := docstore.Decode(&docs[i], &item); err != nil {
			slog.WarnContext(ctx, "Skipping undecodable catalog entry", "collection", r.collection, "id", docs[i].ID, "error", err)
			continue
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool { return name(&out[i]) < name(&out[j]) })
	return out, nil
}

// Put creates or replaces the entry with id
func (r *Repository[T]) Put(ctx context.Context, id string, item *T) error {
	fields, err := docstore.Encode(item)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.collection, id, fields); err != nil {
		slog.ErrorContext(ctx, "Failed to write catalog entry", "collection", r.collection, "id", id, "error", err)
		return fmt.Errorf("failed to write %s %s: %w", r.collection, id, err)
	}
	return nil
}

// Update merges fields into the entry with id
func (r *Repository[T]) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := r.store.Update(ctx, r.collection, id, fields); err != nil {
		slog.ErrorContext(ctx, "Failed to update catalog entry", "collection", r.collection, "id", id, "error", err)
		return fmt.Errorf("failed to update %s %s: %w", r.collection, id, err)
	}
	return nil
}

// Delete removes the entry with id
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, r.collection, id); err != nil {
		slog.ErrorContext(ctx, "Failed to delete catalog entry", "collection", r.collection, "id", id, "error", err)
		return fmt.Errorf("failed to delete %s %s: %w", r.collection, id, err)
	}
	return nil
}
