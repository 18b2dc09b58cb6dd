package chatservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	chatdb "github.com/Five-Stack-Club/rift-bot/app/modules/chat/infrastructure/repositories"
	"github.com/Five-Stack-Club/rift-bot/app/shared/observability/attr"
	chatmetrics "github.com/Five-Stack-Club/rift-bot/app/shared/observability/otel/metrics/chat"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/results"
)

// Ensure ChatService implements the Service interface.
var _ Service = (*ChatService)(nil)

// ChatService implements the Service interface.
type ChatService struct {
	repo    chatdb.Repository
	client  CompletionClient
	tools   []Tool
	logger  *slog.Logger
	metrics chatmetrics.ChatMetrics
	tracer  trace.Tracer
	db      *bun.DB

	// systemPrompt leads every conversation; prompt content is configuration.
	systemPrompt string
	// historyWindow is how many archived messages feed the model.
	historyWindow int
}

// NewChatService creates a new ChatService. The toolset is built from the
// stats and accounts services the model is allowed to call.
func NewChatService(
	repo chatdb.Repository,
	client CompletionClient,
	stats StatsReader,
	accounts AccountsReader,
	logger *slog.Logger,
	metrics chatmetrics.ChatMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	systemPrompt string,
	historyWindow int,
) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	if historyWindow <= 0 {
		historyWindow = 30
	}
	return &ChatService{
		repo:          repo,
		client:        client,
		tools:         newToolset(stats, accounts),
		logger:        logger,
		metrics:       metrics,
		tracer:        tracer,
		db:            db,
		systemPrompt:  systemPrompt,
		historyWindow: historyWindow,
	}
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *ChatService,
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
		s.metrics.RecordOperationAttempt(ctx, operationName, "ChatService")
	}

	// Track duration
	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, "ChatService", time.Since(startTime))
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
				s.metrics.RecordOperationFailure(ctx, operationName, "ChatService")
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
			s.metrics.RecordOperationFailure(ctx, operationName, "ChatService")
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
		s.metrics.RecordOperationSuccess(ctx, operationName, "ChatService")
	}

	return result, nil
}

// complete calls the completion API and records the round in metrics.
func (s *ChatService) complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	start := time.Now()
	resp, err := s.client.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordCompletion(ctx, len(resp.ToolCalls), time.Since(start))
	}
	return resp, nil
}
