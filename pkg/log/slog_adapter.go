package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes agent events to an slog.Logger.
// Useful for development when you want to see agent events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at a level derived from the
// event severity.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("category", event.Category.String()),
	}

	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}
	if event.Object != "" {
		attrs = append(attrs, slog.String("object", event.Object))
	}
	if event.Peer != "" {
		attrs = append(attrs, slog.String("peer", event.Peer))
	}
	if event.Rate != 0 {
		attrs = append(attrs, slog.Uint64("rate", uint64(event.Rate)))
	}
	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
	}

	a.logger.LogAttrs(context.Background(), slogLevel(event.Severity), event.Message, attrs...)
}

// slogLevel maps an event severity to an slog level.
func slogLevel(s Severity) slog.Level {
	switch s {
	case SeverityDebug:
		return slog.LevelDebug
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarn:
		return slog.LevelWarn
	case SeverityError:
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
