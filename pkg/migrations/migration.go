package migrations

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "_migrations"

// Migration is the record of an applied migration
type Migration struct {
	Version     string    `bson:"version"`
	Description string    `bson:"description"`
	AppliedAt   time.Time `bson:"applied_at"`
	Checksum    string    `bson:"checksum"`
}

// MigrationFunc defines a migration function signature
type MigrationFunc func(ctx context.Context, db *mongo.Database) error

// RegisteredMigration holds migration metadata and functions
type RegisteredMigration struct {
	Version     string
	Description string
	Up          MigrationFunc
	Down        MigrationFunc // optional
}

// Runner applies registered migrations in registration order
type Runner struct {
	db         *mongo.Database
	collection *mongo.Collection
	migrations []RegisteredMigration
	out        io.Writer
}

// NewRunner creates a new migration runner
func NewRunner(db *mongo.Database) *Runner {
	return &Runner{
		db:         db,
		collection: db.Collection(collectionName),
		out:        os.Stdout,
	}
}

// Register adds a migration to the runner
func (r *Runner) Register(migration RegisteredMigration) {
	r.migrations = append(r.migrations, migration)
}

// Pending returns the registered migrations not yet applied
func (r *Runner) Pending(ctx context.Context) ([]RegisteredMigration, error) {
	applied, err := r.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	return pending(r.migrations, applied), nil
}

// Run executes all pending migrations. Each migration and its record are
// written in one session.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.ensureIndex(ctx); err != nil {
		return fmt.Errorf("failed to create migrations index: %w", err)
	}

	todo, err := r.Pending(ctx)
	if err != nil {
		return err
	}

	for _, migration := range todo {
		fmt.Fprintf(r.out, "🔄 Running migration: %s - %s\n", migration.Version, migration.Description)

		err := r.inSession(ctx, func(sc mongo.SessionContext) error {
			if err := migration.Up(sc, r.db); err != nil {
				return fmt.Errorf("migration %s failed: %w", migration.Version, err)
			}
			record := Migration{
				Version:     migration.Version,
				Description: migration.Description,
				AppliedAt:   time.Now().UTC(),
				Checksum:    Checksum(migration),
			}
			if _, err := r.collection.InsertOne(sc, record); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(r.out, "✅ Migration %s completed\n", migration.Version)
	}
	return nil
}

// Rollback reverts the last steps applied migrations
func (r *Runner) Rollback(ctx context.Context, steps int) error {
	applied, err := r.applied(ctx)
	if err != nil {
		return err
	}
	if steps > len(applied) {
		steps = len(applied)
	}

	byVersion := make(map[string]RegisteredMigration, len(r.migrations))
	for _, m := range r.migrations {
		byVersion[m.Version] = m
	}

	for i := len(applied) - 1; i >= len(applied)-steps; i-- {
		version := applied[i].Version
		migration, ok := byVersion[version]
		if !ok {
			return fmt.Errorf("migration %s not found in registered migrations", version)
		}
		if migration.Down == nil {
			fmt.Fprintf(r.out, "⚠️  Migration %s has no rollback, skipping\n", version)
			continue
		}

		fmt.Fprintf(r.out, "🔄 Rolling back migration: %s\n", version)
		err := r.inSession(ctx, func(sc mongo.SessionContext) error {
			if err := migration.Down(sc, r.db); err != nil {
				return fmt.Errorf("rollback %s failed: %w", version, err)
			}
			if _, err := r.collection.DeleteOne(sc, bson.M{"version": version}); err != nil {
				return fmt.Errorf("failed to remove migration record %s: %w", version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "✅ Rollback %s completed\n", version)
	}
	return nil
}

// Status prints every registered migration with its state
func (r *Runner) Status(ctx context.Context) error {
	applied, err := r.applied(ctx)
	if err != nil {
		return err
	}
	byVersion := make(map[string]Migration, len(applied))
	for _, m := range applied {
		byVersion[m.Version] = m
	}

	fmt.Fprintln(r.out, "\n📊 Migration Status:")
	fmt.Fprintln(r.out, strings.Repeat("=", 80))
	for _, migration := range r.migrations {
		status, at := "⏳ Pending", ""
		if record, ok := byVersion[migration.Version]; ok {
			status = "✅ Applied"
			at = fmt.Sprintf(" (at %s)", record.AppliedAt.Format("2006-01-02 15:04:05"))
			if record.Checksum != Checksum(migration) {
				status = "⚠️  Changed"
			}
		}
		fmt.Fprintf(r.out, "%s %s - %s%s\n", status, migration.Version, migration.Description, at)
	}
	fmt.Fprintf(r.out, "\nTotal: %d migrations (%d applied, %d pending)\n",
		len(r.migrations), len(applied), len(pending(r.migrations, byVersionSet(applied))))
	return nil
}

func (r *Runner) inSession(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)
	return mongo.WithSession(ctx, session, fn)
}

func (r *Runner) ensureIndex(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "version", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *Runner) applied(ctx context.Context) ([]Migration, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "version", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	defer cursor.Close(ctx)

	var migrations []Migration
	if err := cursor.All(ctx, &migrations); err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return migrations, nil
}

func (r *Runner) appliedVersions(ctx context.Context) (map[string]bool, error) {
	applied, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	return byVersionSet(applied), nil
}

func byVersionSet(applied []Migration) map[string]bool {
	set := make(map[string]bool, len(applied))
	for _, m := range applied {
		set[m.Version] = true
	}
	return set
}

func pending(all []RegisteredMigration, applied map[string]bool) []RegisteredMigration {
	var out []RegisteredMigration
	for _, m := range all {
		if !applied[m.Version] {
			out = append(out, m)
		}
	}
	return out
}

// Checksum fingerprints a migration's identity so edited migrations show up
// in Status
func Checksum(migration RegisteredMigration) string {
	sum := sha256.Sum256([]byte(migration.Version + "\x00" + migration.Description))
	return hex.EncodeToString(sum[:])
}
