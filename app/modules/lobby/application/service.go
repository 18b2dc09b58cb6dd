package lobbyservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	lobbydomain "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/domain"
	lobbydb "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/infrastructure/repositories"
	"github.com/Five-Stack-Club/rift-bot/app/shared/observability/attr"
	lobbymetrics "github.com/Five-Stack-Club/rift-bot/app/shared/observability/otel/metrics/lobby"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/results"
)

var (
	// ErrChannelBusy is returned when a channel already has an open lobby.
	ErrChannelBusy = errors.New("a lobby is already open in this channel")

	// ErrNoOpenLobby is returned when an operation targets a channel
	// without an open lobby.
	ErrNoOpenLobby = errors.New("no open lobby in this channel")

	// ErrLobbyNotFound is returned when a lobby ID resolves to nothing.
	ErrLobbyNotFound = errors.New("lobby not found")
)

// Ensure LobbyService implements the Service interface.
var _ Service = (*LobbyService)(nil)

// session is one live lobby: its persisted identity plus the in-memory
// candidate pool. Pools are not persisted; a restart empties them.
type session struct {
	info LobbyInfo
	pool *lobbydomain.Pool
}

// LobbyService implements the Service interface.
type LobbyService struct {
	repo    lobbydb.Repository
	queue   ExpiryScheduler
	ratings lobbydomain.RatingSource
	logger  *slog.Logger
	metrics lobbymetrics.LobbyMetrics
	tracer  trace.Tracer
	db      *bun.DB

	ttl           time.Duration
	ratingTimeout time.Duration
	clock         Clock

	mu        sync.RWMutex
	byID      map[sharedtypes.LobbyID]*session
	byChannel map[sharedtypes.ChannelID]*session
	byMessage map[sharedtypes.MessageID]*session
}

// NewLobbyService creates a new LobbyService.
func NewLobbyService(
	repo lobbydb.Repository,
	queue ExpiryScheduler,
	ratings lobbydomain.RatingSource,
	logger *slog.Logger,
	metrics lobbymetrics.LobbyMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	ttl time.Duration,
	ratingTimeout time.Duration,
) *LobbyService {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &LobbyService{
		repo:          repo,
		queue:         queue,
		ratings:       ratings,
		logger:        logger,
		metrics:       metrics,
		tracer:        tracer,
		db:            db,
		ttl:           ttl,
		ratingTimeout: ratingTimeout,
		clock:         realClock{},
		byID:          make(map[sharedtypes.LobbyID]*session),
		byChannel:     make(map[sharedtypes.ChannelID]*session),
		byMessage:     make(map[sharedtypes.MessageID]*session),
	}
}

// register adds a session to every index it is reachable through.
func (s *LobbyService) register(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[sess.info.ID] = sess
	s.byChannel[sess.info.ChannelID] = sess
	if sess.info.MessageID != "" {
		s.byMessage[sess.info.MessageID] = sess
	}
}

// unregister removes a session from every index. It returns the removed
// session, or nil if the ID was not registered.
func (s *LobbyService) unregister(lobbyID sharedtypes.LobbyID) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[lobbyID]
	if !ok {
		return nil
	}
	delete(s.byID, lobbyID)
	delete(s.byChannel, sess.info.ChannelID)
	if sess.info.MessageID != "" {
		delete(s.byMessage, sess.info.MessageID)
	}
	return sess
}

func (s *LobbyService) lookupByID(lobbyID sharedtypes.LobbyID) *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[lobbyID]
}

func (s *LobbyService) lookupByChannel(channelID sharedtypes.ChannelID) *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byChannel[channelID]
}

func (s *LobbyService) lookupByMessage(messageID sharedtypes.MessageID) *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byMessage[messageID]
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *LobbyService,
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
		s.metrics.RecordOperationAttempt(ctx, operationName, "LobbyService")
	}

	// Track duration
	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, "LobbyService", time.Since(startTime))
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
				s.metrics.RecordOperationFailure(ctx, operationName, "LobbyService")
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
			s.metrics.RecordOperationFailure(ctx, operationName, "LobbyService")
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
		s.metrics.RecordOperationSuccess(ctx, operationName, "LobbyService")
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *LobbyService,
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
