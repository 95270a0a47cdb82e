package observability

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

const (
	// LogFieldTraceID is the field name for dispatch trace ID.
	LogFieldTraceID = "trace_id"
	// LogFieldRoomID is the field name for room ID.
	LogFieldRoomID = "room_id"
	// LogFieldReminderID is the field name for reminder ID.
	LogFieldReminderID = "reminder_id"
	// LogFieldUserID is the field name for user ID.
	LogFieldUserID = "user_id"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
	// LogFieldErrorCode is the field name for error code.
	LogFieldErrorCode = "error_code"
	// LogFieldDueCount is the field name for the number of due reminders.
	LogFieldDueCount = "due_count"
)

// NewLogger builds the process logger. Dev mode logs human-readable text at
// debug level; everything else logs JSON at info level.
func NewLogger(mode string) *slog.Logger {
	if mode != "prod" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// DispatchContext carries structured logging state for a single dispatch
// cycle: one trace ID shared by every reminder processed in that cycle.
type DispatchContext struct {
	TraceID   string
	RoomID    string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewDispatchContext creates a dispatch context with a generated trace ID.
func NewDispatchContext(logger *slog.Logger) *DispatchContext {
	return &DispatchContext{
		TraceID:   generateTraceID(),
		StartTime: time.Now(),
		Logger:    logger,
	}
}

// ForRoom returns a copy scoped to one room.
func (d *DispatchContext) ForRoom(roomID string) *DispatchContext {
	return &DispatchContext{
		TraceID:   d.TraceID,
		RoomID:    roomID,
		StartTime: d.StartTime,
		Logger:    d.Logger,
	}
}

// Info logs an info message.
func (d *DispatchContext) Info(msg string, attrs ...slog.Attr) {
	d.Logger.LogAttrs(context.Background(), slog.LevelInfo, msg, d.baseAttrsAppended(attrs...)...)
}

// Debug logs a debug message.
func (d *DispatchContext) Debug(msg string, attrs ...slog.Attr) {
	d.Logger.LogAttrs(context.Background(), slog.LevelDebug, msg, d.baseAttrsAppended(attrs...)...)
}

// Warn logs a warning message.
func (d *DispatchContext) Warn(msg string, attrs ...slog.Attr) {
	d.Logger.LogAttrs(context.Background(), slog.LevelWarn, msg, d.baseAttrsAppended(attrs...)...)
}

// Error logs an error message with the error.
func (d *DispatchContext) Error(msg string, err error, attrs ...slog.Attr) {
	allAttrs := append(attrs, slog.String("error", err.Error()))
	d.Logger.LogAttrs(context.Background(), slog.LevelError, msg, d.baseAttrsAppended(allAttrs...)...)
}

// Duration returns the elapsed time since the dispatch cycle started.
func (d *DispatchContext) Duration() time.Duration {
	return time.Since(d.StartTime)
}

// DurationMs returns the elapsed time in milliseconds.
func (d *DispatchContext) DurationMs() int64 {
	return d.Duration().Milliseconds()
}

func (d *DispatchContext) baseAttrs() []slog.Attr {
	attrs := []slog.Attr{slog.String(LogFieldTraceID, d.TraceID)}
	if d.RoomID != "" {
		attrs = append(attrs, slog.String(LogFieldRoomID, d.RoomID))
	}
	return attrs
}

func (d *DispatchContext) baseAttrsAppended(attrs ...slog.Attr) []slog.Attr {
	return append(d.baseAttrs(), attrs...)
}

// generateTraceID generates a unique trace ID using full UUID.
func generateTraceID() string {
	return uuid.New().String()
}

type ctxKey struct{}

// WithDispatchContext adds the dispatch context to the context.
func WithDispatchContext(ctx context.Context, dispCtx *DispatchContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, dispCtx)
}

// FromContext extracts the dispatch context from the context.
func FromContext(ctx context.Context) (*DispatchContext, bool) {
	dispCtx, ok := ctx.Value(ctxKey{}).(*DispatchContext)
	return dispCtx, ok
}
