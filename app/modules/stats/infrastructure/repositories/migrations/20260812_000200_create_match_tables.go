package statsmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating lol_matches and api_request_logs tables...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS lol_matches (
				match_id VARCHAR(64) PRIMARY KEY,
				region VARCHAR(16) NOT NULL,
				api_version VARCHAR(32) NOT NULL,
				players TEXT[] NOT NULL,
				game_creation BIGINT NOT NULL,
				match_data JSONB NOT NULL,
				fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_lol_matches_players ON lol_matches USING GIN(players);
			CREATE INDEX IF NOT EXISTS idx_lol_matches_game_creation ON lol_matches(game_creation DESC);

			CREATE TABLE IF NOT EXISTS api_request_logs (
				id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
				route VARCHAR(256) NOT NULL,
				status_code INT NOT NULL,
				duration_ms BIGINT NOT NULL,
				requested_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_api_request_logs_requested_at ON api_request_logs(requested_at);
		`)
		if err != nil {
			return fmt.Errorf("failed to create stats tables: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS api_request_logs;
			DROP TABLE IF EXISTS lol_matches;
		`)
		return err
	})
}
