package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stormbringer/internal/catalog/dto"
	"stormbringer/internal/catalog/models"
	"stormbringer/pkg/docstore"
)

var (
	// ErrInvalidInput wraps validation failures of submitted catalog data
	ErrInvalidInput = errors.New("invalid catalog input")
	// ErrNotFound is returned by writes addressing a missing entry
	ErrNotFound = errors.New("catalog entry not found")
	// ErrVariantParent is returned when a variant's parent is missing or is
	// itself a variant
	ErrVariantParent = errors.New("variant parent must be an existing base class")
	// ErrHasVariants is returned when a base class with variants would be
	// deleted or turned into a variant
	ErrHasVariants = errors.New("class still has variants")
)

// Service manages the reference catalog
type Service struct {
	store         docstore.Store
	classes       *Repository[models.CharacterClass]
	nationalities *Repository[models.Nationality]
	deities       *Repository[models.Deity]
	weapons       *Repository[models.Weapon]
	now           func() time.Time
}

// NewService creates a catalog service on store
func NewService(store docstore.Store) *Service {
	return &Service{
		store:         store,
		classes:       NewRepository[models.CharacterClass](store, models.ClassesCollection),
		nationalities: NewRepository[models.Nationality](store, models.NationalitiesCollection),
		deities:       NewRepository[models.Deity](store, models.DeitiesCollection),
		weapons:       NewRepository[models.Weapon](store, models.WeaponsCollection),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// runAtomic runs fn in a store transaction. Deployments without
// transactions run fn directly and lose atomicity.
func (s *Service) runAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	err := s.store.RunTransaction(ctx, fn)
	if errors.Is(err, docstore.ErrTransactionsUnsupported) {
		slog.WarnContext(ctx, "Store has no transactions, running catalog write without atomicity")
		return fn(ctx)
	}
	return err
}

func validateInput(v interface{}) error {
	if msgs := dto.Validate(v); len(msgs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
	}
	return nil
}
