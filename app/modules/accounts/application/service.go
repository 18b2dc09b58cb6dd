package accountsservice

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

	accountsdb "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/infrastructure/repositories"
	"github.com/Five-Stack-Club/rift-bot/app/shared/observability/attr"
	accountmetrics "github.com/Five-Stack-Club/rift-bot/app/shared/observability/otel/metrics/accounts"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/results"
)

var (
	// ErrNotLinked is returned when the user has no matching linked account.
	ErrNotLinked = errors.New("no linked riot accounts")

	// ErrAlreadyLinked is returned when the user already linked this account.
	ErrAlreadyLinked = errors.New("riot account already linked")

	// ErrAccountNotFound is returned when a Riot ID fails verification.
	ErrAccountNotFound = errors.New("riot account not found")
)

// Ensure AccountService implements the Service interface.
var _ Service = (*AccountService)(nil)

// AccountService implements the Service interface.
type AccountService struct {
	repo     accountsdb.Repository
	verifier RiotVerifier
	logger   *slog.Logger
	metrics  accountmetrics.AccountMetrics
	tracer   trace.Tracer
	db       *bun.DB

	// defaultRegion labels links created without an explicit region.
	defaultRegion string
}

// NewAccountService creates a new AccountService.
func NewAccountService(
	repo accountsdb.Repository,
	verifier RiotVerifier,
	logger *slog.Logger,
	metrics accountmetrics.AccountMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	defaultRegion string,
) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultRegion == "" {
		defaultRegion = "na1"
	}
	return &AccountService{
		repo:          repo,
		verifier:      verifier,
		logger:        logger,
		metrics:       metrics,
		tracer:        tracer,
		db:            db,
		defaultRegion: defaultRegion,
	}
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *AccountService,
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
		s.metrics.RecordOperationAttempt(ctx, operationName, "AccountService")
	}

	// Track duration
	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, "AccountService", time.Since(startTime))
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
				s.metrics.RecordOperationFailure(ctx, operationName, "AccountService")
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
			s.metrics.RecordOperationFailure(ctx, operationName, "AccountService")
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
		s.metrics.RecordOperationSuccess(ctx, operationName, "AccountService")
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *AccountService,
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
