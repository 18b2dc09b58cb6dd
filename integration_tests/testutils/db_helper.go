package testutils

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	accountsmigrations "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/infrastructure/repositories/migrations"
	chatmigrations "github.com/Five-Stack-Club/rift-bot/app/modules/chat/infrastructure/repositories/migrations"
	lobbymigrations "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/infrastructure/repositories/migrations"
	statsmigrations "github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/repositories/migrations"
)

// runMigrationsWithConnStr brings a fresh test database fully up: the River
// job tables first (the lobby expiry queue needs them), then every module's
// bun migrations.
func runMigrationsWithConnStr(db *bun.DB, pgConnStr string) error {
	ctx := context.Background()

	// Any migrator can create the bun migration bookkeeping tables.
	migrator := migrate.NewMigrator(db, lobbymigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}

	if err := runRiverMigrations(ctx, pgConnStr); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}

	orderedModules := []struct {
		name       string
		migrations *migrate.Migrations
	}{
		{"accounts", accountsmigrations.Migrations},
		{"stats", statsmigrations.Migrations},
		{"lobby", lobbymigrations.Migrations},
		{"chat", chatmigrations.Migrations},
	}

	for _, mod := range orderedModules {
		if err := runModuleMigrations(ctx, db, mod.migrations, mod.name); err != nil {
			return err
		}
	}
	log.Println("All migrations ran successfully")
	return nil
}

// runRiverMigrations runs River queue system migrations
func runRiverMigrations(ctx context.Context, pgConnStr string) error {
	config, err := pgxpool.ParseConfig(pgConnStr)
	if err != nil {
		return fmt.Errorf("failed to parse DSN for River migrations: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}

	_, err = migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
	if err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}

	log.Println("River queue migrations completed successfully")
	return nil
}

// runModuleMigrations runs migrations for a specific module
func runModuleMigrations(ctx context.Context, db *bun.DB, migrations *migrate.Migrations, name string) error {
	migrator := migrate.NewMigrator(db, migrations)
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run %s migrations: %w", name, err)
	}
	if group.ID == 0 {
		log.Printf("No %s migrations to run", name)
	} else {
		log.Printf("Ran %s migrations group #%d", name, group.ID)
	}
	return nil
}

// appTables lists every application table, newest dependents first.
var appTables = []string{"chat_messages", "lobbies", "lol_matches", "api_request_logs", "summoner_links", "users"}

// CleanupRiverJobs deletes all jobs from the River queue
func CleanupRiverJobs(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, "DELETE FROM river_job")
	return err
}

// CleanupDatabase truncates all application tables to ensure a clean state
func CleanupDatabase(ctx context.Context, db *bun.DB) error {
	query := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(appTables, ", "))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}

	if err := CleanupRiverJobs(ctx, db); err != nil {
		// Don't fail if table doesn't exist yet
		if !strings.Contains(err.Error(), "does not exist") {
			return fmt.Errorf("failed to cleanup river jobs: %w", err)
		}
	}

	return nil
}

// TruncateTables truncates the specified tables
func TruncateTables(ctx context.Context, db *bun.DB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("TRUNCATE TABLE ")
	for i, table := range tables {
		sb.WriteString(fmt.Sprintf(`"%s"`, table))
		if i < len(tables)-1 {
			sb.WriteString(", ")
		}
	}
	sb.WriteString(" CASCADE")

	log.Printf("Truncating tables: %s", strings.Join(tables, ", "))
	if _, err := db.ExecContext(ctx, sb.String()); err != nil {
		return fmt.Errorf("failed to truncate tables %v: %w", tables, err)
	}
	return nil
}

// CleanLobbyIntegrationTables truncates lobby state between tests.
func CleanLobbyIntegrationTables(ctx context.Context, db *bun.DB) error {
	if err := TruncateTables(ctx, db, "lobbies"); err != nil {
		return err
	}
	return CleanupRiverJobs(ctx, db)
}

// CleanAccountIntegrationTables truncates the identity registry and links.
func CleanAccountIntegrationTables(ctx context.Context, db *bun.DB) error {
	return TruncateTables(ctx, db, "summoner_links", "users")
}

// CleanStatsIntegrationTables truncates cached matches and the request log.
func CleanStatsIntegrationTables(ctx context.Context, db *bun.DB) error {
	return TruncateTables(ctx, db, "lol_matches", "api_request_logs")
}

// CleanChatIntegrationTables truncates the archived message history.
func CleanChatIntegrationTables(ctx context.Context, db *bun.DB) error {
	return TruncateTables(ctx, db, "chat_messages")
}
