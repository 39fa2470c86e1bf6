// Package zaplog forwards activity events to a zap logger, giving container
// lifecycle changes a structured log trail without a dedicated sink.
package zaplog

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-props/pkg/activity"
)

// Hook writes every activity event to a zap logger at info level.
type Hook struct {
	logger *zap.Logger
}

// New builds a Hook. A nil logger degrades to a no-op logger so the hook can
// always be registered.
func New(logger *zap.Logger) Hook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Hook{logger: logger}
}

// Notify implements activity.ActivityHook.
func (h Hook) Notify(_ context.Context, event activity.Event) error {
	if h.logger == nil {
		return nil
	}

	fields := []zap.Field{
		zap.String("verb", event.Verb),
		zap.String("object_type", event.ObjectType),
		zap.String("object_id", event.ObjectID),
		zap.Time("occurred_at", event.OccurredAt),
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.TenantID != "" {
		fields = append(fields, zap.String("tenant_id", event.TenantID))
	}
	if event.Channel != "" {
		fields = append(fields, zap.String("channel", event.Channel))
	}
	if event.Definition != "" {
		fields = append(fields, zap.String("definition", event.Definition))
	}
	if len(event.Recipients) > 0 {
		fields = append(fields, zap.Strings("recipients", event.Recipients))
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", event.Metadata))
	}

	h.logger.Info("activity event", fields...)
	return nil
}
