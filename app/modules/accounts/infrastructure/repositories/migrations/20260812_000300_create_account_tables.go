package accountsmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating users and summoner_links tables...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS users (
				discord_id VARCHAR(32) PRIMARY KEY,
				username VARCHAR(128) NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS summoner_links (
				id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
				discord_id VARCHAR(32) NOT NULL,
				puuid VARCHAR(128) NOT NULL,
				game_name VARCHAR(64) NOT NULL,
				tag_line VARCHAR(16) NOT NULL,
				region VARCHAR(16) NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT uq_summoner_links_user_puuid UNIQUE (discord_id, puuid)
			);
			CREATE INDEX IF NOT EXISTS idx_summoner_links_discord_id ON summoner_links(discord_id);
		`)
		if err != nil {
			return fmt.Errorf("failed to create account tables: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS summoner_links;
			DROP TABLE IF EXISTS users;
		`)
		return err
	})
}
