package lobbymigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating lobbies table...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS lobbies (
				id UUID PRIMARY KEY,
				guild_id VARCHAR(20) NOT NULL,
				channel_id VARCHAR(20) NOT NULL,
				message_id VARCHAR(20),
				state VARCHAR(10) NOT NULL DEFAULT 'OPEN',
				opened_by VARCHAR(20) NOT NULL,
				expires_at TIMESTAMPTZ NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				closed_at TIMESTAMPTZ
			);
			CREATE INDEX IF NOT EXISTS idx_lobbies_message_id ON lobbies(message_id);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_lobbies_open_channel
				ON lobbies(channel_id) WHERE state = 'OPEN';
		`)
		if err != nil {
			return fmt.Errorf("failed to create lobbies table: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS lobbies;`)
		return err
	})
}
