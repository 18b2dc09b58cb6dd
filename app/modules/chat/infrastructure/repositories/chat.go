package chatdb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new chat repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// InsertMessage archives one gateway message. The message_id unique
// constraint absorbs broker redeliveries.
func (r *Impl) InsertMessage(ctx context.Context, db bun.IDB, msg *Message) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(msg).
		On("CONFLICT (message_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

// ListRecent returns the channel's newest messages, newest first.
func (r *Impl) ListRecent(ctx context.Context, db bun.IDB, channelID sharedtypes.ChannelID, limit int) ([]Message, error) {
	db = r.resolveDB(db)
	var msgs []Message
	err := db.NewSelect().
		Model(&msgs).
		Where("channel_id = ?", channelID).
		OrderExpr("created_at DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return msgs, nil
}
