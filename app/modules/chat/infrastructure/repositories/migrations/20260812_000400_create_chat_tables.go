package chatmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating chat_messages table...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS chat_messages (
				id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
				guild_id VARCHAR(32) NOT NULL,
				channel_id VARCHAR(32) NOT NULL,
				message_id VARCHAR(32) NOT NULL,
				author_id VARCHAR(32) NOT NULL,
				author_name VARCHAR(128) NOT NULL DEFAULT '',
				content TEXT NOT NULL DEFAULT '',
				from_bot BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT uq_chat_messages_message_id UNIQUE (message_id)
			);
			CREATE INDEX IF NOT EXISTS idx_chat_messages_channel_created ON chat_messages(channel_id, created_at DESC);
		`)
		if err != nil {
			return fmt.Errorf("failed to create chat tables: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS chat_messages;
		`)
		return err
	})
}
