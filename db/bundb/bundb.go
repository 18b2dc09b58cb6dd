// Package bundb owns construction of the shared bun.DB handle.
package bundb

import (
	"context"
	"database/sql"
	"fmt"

	accountsdb "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/infrastructure/repositories"
	chatdb "github.com/Five-Stack-Club/rift-bot/app/modules/chat/infrastructure/repositories"
	lobbydb "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/infrastructure/repositories"
	statsdb "github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/repositories"
	"github.com/Five-Stack-Club/rift-bot/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// NewDB opens a Postgres-backed bun.DB and registers every module's models.
// Modules build their repositories on top of the returned handle.
func NewDB(ctx context.Context, cfg config.PostgresConfig) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	registerModels(db)
	return db, nil
}

func registerModels(db *bun.DB) {
	db.RegisterModel(
		(*lobbydb.Lobby)(nil),
		(*accountsdb.User)(nil),
		(*accountsdb.SummonerLink)(nil),
		(*statsdb.Match)(nil),
		(*statsdb.APIRequestLog)(nil),
		(*chatdb.Message)(nil),
	)
}
