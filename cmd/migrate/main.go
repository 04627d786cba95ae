package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"stormbringer/pkg/app"
	pkgMigrations "stormbringer/pkg/migrations"

	// Import all migration files to register them
	localMigrations "stormbringer/migrations"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		steps   = flag.Int("steps", 1, "Number of migrations to rollback (for down command)")
		name    = flag.String("name", "", "Migration name (for create command)")
		dryRun  = flag.Bool("dry-run", false, "Show what would be done without executing")
		dir     = flag.String("dir", "migrations", "Migrations directory (for create command)")
	)
	flag.Parse()

	// create needs no database
	if *command == "create" {
		if *name == "" {
			log.Fatal("❌ Migration name is required for create command")
		}
		if err := createMigration(*dir, *name); err != nil {
			log.Fatalf("❌ Failed to create migration: %v", err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	appCtx, err := app.InitializeApp("stormbringer")
	if err != nil {
		log.Fatalf("❌ Failed to initialize application: %v", err)
	}
	defer appCtx.Shutdown(ctx)

	if appCtx.MongoDB == nil {
		log.Fatal("❌ Migrations need MongoDB, set MONGODB_URI")
	}

	runner := pkgMigrations.NewRunner(appCtx.MongoDB.Database)
	localMigrations.RegisterAll(runner)

	switch *command {
	case "up":
		if *dryRun {
			todo, err := runner.Pending(ctx)
			if err != nil {
				log.Fatalf("❌ Failed to list pending migrations: %v", err)
			}
			fmt.Printf("⚠️  DRY RUN MODE - %d migration(s) would run\n", len(todo))
			for _, m := range todo {
				fmt.Printf("   %s - %s\n", m.Version, m.Description)
			}
			return
		}
		fmt.Println("🚀 Running database migrations...")
		if err := runner.Run(ctx); err != nil {
			log.Fatalf("❌ Migration failed: %v", err)
		}
		fmt.Println("✅ All migrations completed successfully")

	case "down":
		if *steps < 1 {
			log.Fatal("❌ steps must be at least 1")
		}
		if *dryRun {
			fmt.Printf("⚠️  DRY RUN MODE - would roll back %d migration(s)\n", *steps)
			if err := runner.Status(ctx); err != nil {
				log.Fatalf("❌ Failed to show status: %v", err)
			}
			return
		}
		fmt.Printf("🔄 Rolling back %d migration(s)...\n", *steps)
		if err := runner.Rollback(ctx, *steps); err != nil {
			log.Fatalf("❌ Rollback failed: %v", err)
		}
		fmt.Println("✅ Rollback completed successfully")

	case "status":
		if err := runner.Status(ctx); err != nil {
			log.Fatalf("❌ Failed to get migration status: %v", err)
		}

	default:
		log.Fatalf("❌ Unknown command: %s", *command)
	}
}

const migrationTemplate = `package migrations

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

func init() {
	Register(Migration{
		Version:     "%[1]s_%[2]s",
		Description: "%[2]s",
		Up:          up%[1]s,
		Down:        down%[1]s,
	})
}

func up%[1]s(ctx context.Context, db *mongo.Database) error {
	return nil
}

func down%[1]s(ctx context.Context, db *mongo.Database) error {
	return nil
}
`

// createMigration writes a migration skeleton with the next version number
func createMigration(dir, name string) error {
	version := fmt.Sprintf("%03d", nextVersion(dir))
	filename := filepath.Join(dir, fmt.Sprintf("%s_%s.go", version, name))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("migration file %s already exists", filename)
	}
	if err := os.WriteFile(filename, []byte(fmt.Sprintf(migrationTemplate, version, name)), 0o644); err != nil {
		return err
	}

	fmt.Printf("✅ Created migration file: %s\n", filename)
	return nil
}

// nextVersion returns one past the highest numbered migration file in dir
func nextVersion(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 1
	}

	maxVersion := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%03d_", &version); err == nil && version > maxVersion {
			maxVersion = version
		}
	}
	return maxVersion + 1
}
