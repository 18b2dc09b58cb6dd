package lobbyqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"

	"github.com/Five-Stack-Club/rift-bot/app/eventbus"
	lobbyservice "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/application"
	"github.com/Five-Stack-Club/rift-bot/app/shared/observability/attr"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils"
)

// Metrics is the slice of the lobby metrics the queue service records.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// Ensure Service satisfies the application's scheduler contract.
var _ lobbyservice.ExpiryScheduler = (*Service)(nil)

// Service schedules lobby expiry jobs using River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	db      *bun.DB
	metrics Metrics
}

// NewService creates a new River-based queue service for lobby expiry.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, metrics Metrics, eventBus eventbus.EventBus, helpers utils.Helpers) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_lobby_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	ctxLogger.Info("Initializing lobby queue service")

	// River requires pgx, not database/sql.
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		ctxLogger.Error("Failed to parse DSN for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		ctxLogger.Error("Failed to create pgx pool for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewLobbyExpiryWorker(ctxLogger, eventBus, helpers))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			"lobby":            {MaxWorkers: 5},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	service := &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: metrics,
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))

	ctxLogger.Info("Lobby queue service initialized successfully")
	return service, nil
}

// Start starts the River queue service.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting lobby queue service")
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.Info("Lobby queue service started successfully")
	return nil
}

// Stop stops the River queue service and releases its pool.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping lobby queue service")
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()
	s.logger.Info("Lobby queue service stopped successfully")
	return nil
}

// ScheduleExpiry schedules an expiry job for the lobby at the given time.
// A time already in the past makes the job run immediately.
func (s *Service) ScheduleExpiry(ctx context.Context, lobbyID sharedtypes.LobbyID, at time.Time) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "schedule_expiry", "river")

	ctxLogger := s.logger.With(
		attr.LobbyID("lobby_id", lobbyID),
		attr.Time("expires_at", at),
		attr.String("operation", "schedule_expiry"),
	)

	ctxLogger.Info("Scheduling lobby expiry job")

	job := LobbyExpiryJob{LobbyID: lobbyID.String()}

	jobResult, err := s.client.Insert(ctx, job, &river.InsertOpts{
		Queue:       "lobby",
		ScheduledAt: at,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true, // Prevent duplicate scheduling for same lobby
		},
	})
	if err != nil {
		ctxLogger.Error("Failed to schedule lobby expiry job", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "schedule_expiry", "river")
		return fmt.Errorf("failed to schedule lobby expiry job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "schedule_expiry", "river")
	s.metrics.RecordOperationDuration(ctx, "schedule_expiry", "river", time.Since(start))

	ctxLogger.Info("Lobby expiry job scheduled successfully",
		attr.Duration("delay", time.Until(at)),
		attr.Int64("job_id", jobResult.Job.ID))
	return nil
}

// CancelExpiry cancels any pending expiry job for the lobby.
func (s *Service) CancelExpiry(ctx context.Context, lobbyID sharedtypes.LobbyID) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "cancel_expiry", "river")

	ctxLogger := s.logger.With(
		attr.LobbyID("lobby_id", lobbyID),
		attr.String("operation", "cancel_expiry"),
	)

	ctxLogger.Info("Cancelling scheduled expiry for lobby")

	type riverJobRow struct {
		ID   int64  `bun:"id"`
		Kind string `bun:"kind"`
	}

	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind").
		Where("kind = ?", LobbyExpiryJob{}.Kind()).
		Where("state IN (?, ?)", "available", "scheduled").
		Where("args->>'lobby_id' = ?", lobbyID.String()).
		Scan(ctx, &jobs)
	if err != nil {
		ctxLogger.Error("Failed to query expiry jobs for cancellation", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "cancel_expiry", "river")
		return fmt.Errorf("failed to query expiry jobs for cancellation: %w", err)
	}

	cancelled := 0
	for _, job := range jobs {
		if _, err := s.client.JobCancel(ctx, job.ID); err != nil {
			ctxLogger.Warn("Failed to cancel expiry job",
				attr.Int64("job_id", job.ID),
				attr.Error(err))
			continue
		}
		cancelled++
	}

	s.metrics.RecordOperationSuccess(ctx, "cancel_expiry", "river")
	s.metrics.RecordOperationDuration(ctx, "cancel_expiry", "river", time.Since(start))

	ctxLogger.Info("Expiry cancellation completed",
		attr.Int("total_found", len(jobs)),
		attr.Int("cancelled_count", cancelled))
	return nil
}

// HealthCheck verifies the queue service can reach its job table.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}

	var count int
	err := s.db.NewSelect().
		Table("river_job").
		ColumnExpr("COUNT(*)").
		Scan(ctx, &count)
	if err != nil {
		s.logger.Error("Queue service health check failed", attr.Error(err))
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}
