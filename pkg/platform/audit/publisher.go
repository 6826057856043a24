package audit

import (
	"context"
	"log/slog"
	"time"

	"insignia/pkg/platform/device"
	"insignia/pkg/requestcontext"
)

// LogPublisher writes audit events as structured log lines. It enriches each
// event with the request correlation id and a readable client device label
// before emitting.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher backed by the given logger.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Emit records the event. It never fails; audit logging must not abort the
// operation that produced the event.
func (p *LogPublisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Device == "" {
		if ua := requestcontext.UserAgent(ctx); ua != "" {
			event.Device = device.Label(ua)
		}
	}

	attrs := []any{
		"log_type", "audit",
		"action", string(event.Action),
		"badge_id", event.BadgeID,
	}
	if event.Holder != "" {
		attrs = append(attrs, "holder", event.Holder)
	}
	if event.Role != "" {
		attrs = append(attrs, "role", event.Role)
	}
	if event.Grade != "" {
		attrs = append(attrs, "grade", event.Grade)
	}
	if event.Actor != "" {
		attrs = append(attrs, "actor", event.Actor)
	}
	if event.RequestID != "" {
		attrs = append(attrs, "request_id", event.RequestID)
	}
	if event.Device != "" {
		attrs = append(attrs, "device", event.Device)
	}

	p.logger.InfoContext(ctx, string(event.Action), attrs...)
	return nil
}
