package attr

import (
	"context"
	"log/slog"
	"time"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

type correlationIDKey struct{}

// WithCorrelationID stores a correlation ID on the context so nested service
// and repository logging can attach it without threading it explicitly.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationIDFromContext returns the correlation ID stored on ctx, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// ExtractCorrelationID returns a correlation_id attribute from ctx, or an
// empty-valued attribute when none was set.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	return slog.String("correlation_id", CorrelationIDFromContext(ctx))
}

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Int64(key string, value int64) slog.Attr { return slog.Int64(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

func Time(key string, value time.Time) slog.Attr { return slog.Time(key, value) }

func Any(key string, value any) slog.Attr { return slog.Any(key, value) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

func UserID(key string, id sharedtypes.DiscordID) slog.Attr {
	return slog.String(key, id.String())
}

func LobbyID(key string, id sharedtypes.LobbyID) slog.Attr {
	return slog.String(key, id.String())
}
