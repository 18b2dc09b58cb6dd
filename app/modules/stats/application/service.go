package statsservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/riotapi"
	statsdb "github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/repositories"
	"github.com/Five-Stack-Club/rift-bot/app/shared/observability/attr"
	statsmetrics "github.com/Five-Stack-Club/rift-bot/app/shared/observability/otel/metrics/stats"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/results"
)

var (
	// ErrNoLink is returned when the user has no linked Riot account.
	ErrNoLink = errors.New("no linked riot account")

	// ErrAccountNotFound is returned when a Riot ID resolves to nothing.
	ErrAccountNotFound = errors.New("riot account not found")

	// ErrNoRankedEntries is returned when an account has no ranked standing
	// in any supported queue.
	ErrNoRankedEntries = errors.New("no ranked entries for this account")

	// ErrNoActiveGame is returned when the player is not currently in a game.
	ErrNoActiveGame = errors.New("player is not in a game")
)

// Ensure StatsService implements the Service interface.
var _ Service = (*StatsService)(nil)

// StatsService implements the Service interface.
type StatsService struct {
	repo    statsdb.Repository
	riot    riotapi.Client
	links   LinkResolver
	logger  *slog.Logger
	metrics statsmetrics.StatsMetrics
	tracer  trace.Tracer
	db      *bun.DB

	// region labels cached match rows with the platform they came from.
	region string
}

// NewStatsService creates a new StatsService.
func NewStatsService(
	repo statsdb.Repository,
	riot riotapi.Client,
	links LinkResolver,
	logger *slog.Logger,
	metrics statsmetrics.StatsMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	region string,
) *StatsService {
	if logger == nil {
		logger = slog.Default()
	}
	if region == "" {
		region = "na1"
	}
	return &StatsService{
		repo:    repo,
		riot:    riot,
		links:   links,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
		region:  region,
	}
}

// resolveTarget picks the player a request is about: an explicit Riot ID
// when given, otherwise the requesting user's primary linked account.
func (s *StatsService) resolveTarget(ctx context.Context, userID sharedtypes.DiscordID, gameName, tagLine string) (*RiotIdentity, error) {
	if gameName != "" {
		account, err := s.riot.AccountByRiotID(ctx, gameName, tagLine)
		if err != nil {
			if riotapi.IsNotFound(err) {
				return nil, ErrAccountNotFound
			}
			return nil, err
		}
		return &RiotIdentity{
			PUUID:    sharedtypes.PUUID(account.PUUID),
			GameName: account.GameName,
			TagLine:  account.TagLine,
		}, nil
	}

	if s.links == nil {
		return nil, ErrNoLink
	}
	link, err := s.links.PrimaryLink(ctx, userID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrNoLink
	}
	return &RiotIdentity{
		PUUID:    link.PUUID,
		GameName: link.GameName,
		TagLine:  link.TagLine,
	}, nil
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *StatsService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {

	// Start span
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	// Record attempt
	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, "StatsService")
	}

	// Track duration
	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, "StatsService", time.Since(startTime))
		}
	}()

	// Log operation start
	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, "StatsService")
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	// Execute operation
	result, err = op(ctx)

	// Handle Infrastructure Error
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, "StatsService")
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	// Handle Domain Failure
	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	// Handle Success
	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, "StatsService")
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *StatsService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {

	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}

// PruneRequestLogs removes API request log rows older than the given age.
func (s *StatsService) PruneRequestLogs(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := withTelemetry(s, ctx, "PruneRequestLogs", olderThan.String(), func(ctx context.Context) (results.OperationResult[int64, error], error) {
		cutoff := time.Now().Add(-olderThan)
		removed, err := s.repo.PruneRequestLogs(ctx, nil, cutoff)
		if err != nil {
			return results.OperationResult[int64, error]{}, err
		}
		return results.SuccessResult[int64, error](removed), nil
	})
	if err != nil {
		return 0, err
	}
	if result.IsFailure() {
		return 0, *result.Failure
	}
	return *result.Success, nil
}
