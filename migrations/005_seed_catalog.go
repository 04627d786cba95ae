package migrations

import (
	"context"
	"fmt"
	"log/slog"

	"stormbringer/internal/catalog/dto"
	catalogServices "stormbringer/internal/catalog/services"
	"stormbringer/internal/derivation"
	"stormbringer/pkg/docstore"

	"go.mongodb.org/mongo-driver/mongo"
)

func init() {
	Register(Migration{
		Version:     "005_seed_catalog",
		Description: "Seed base classes, Stregone and nationalities with their d100 ranges",
		Up:          up005,
		// seeded entries may have been edited since, so there is no rollback
	})
}

func up005(ctx context.Context, db *mongo.Database) error {
	return seedCatalog(ctx, catalogServices.NewService(docstore.NewMongoStore(db, false)))
}

// seedCatalog adds the entries of the d100 class and nationality tables that
// the catalog does not carry yet
func seedCatalog(ctx context.Context, catalog *catalogServices.Service) error {
	classes, err := catalog.ListClasses(ctx)
	if err != nil {
		return fmt.Errorf("failed to list classes: %w", err)
	}
	haveClass := make(map[string]bool, len(classes))
	for _, c := range classes {
		haveClass[c.Name] = true
	}

	// Stregone is never rolled; the sorcerer rule assigns it
	names := make([]string, 0, len(derivation.ClassRollTable)+1)
	for _, r := range derivation.ClassRollTable {
		names = append(names, r.Value)
	}
	names = append(names, derivation.ClassStregone)

	created := 0
	for _, name := range names {
		if haveClass[name] {
			continue
		}
		if _, err := catalog.CreateClass(ctx, dto.ClassRequest{Name: name}); err != nil {
			return fmt.Errorf("failed to seed class %s: %w", name, err)
		}
		created++
	}

	nats, err := catalog.ListNationalities(ctx)
	if err != nil {
		return fmt.Errorf("failed to list nationalities: %w", err)
	}
	haveNationality := make(map[string]bool, len(nats))
	for _, n := range nats {
		haveNationality[n.Name] = true
	}

	for _, r := range derivation.NationalityRollTable {
		if haveNationality[r.Value] {
			continue
		}
		req := dto.NationalityRequest{Name: r.Value, RollMin: r.Min, RollMax: r.Max}
		if _, err := catalog.CreateNationality(ctx, req); err != nil {
			return fmt.Errorf("failed to seed nationality %s: %w", r.Value, err)
		}
		created++
	}

	slog.InfoContext(ctx, "Catalog seeded", "created", created)
	return nil
}
