package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRenderID identifies one render invocation across all of its log lines.
	FieldRenderID = "render_id"
	// FieldSegmentID is the standardized key for segment identifiers.
	FieldSegmentID = "segment_id"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint is the suggested next step for the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey int

const (
	renderIDKey contextKey = iota
	segmentIDKey
)

// WithRenderID returns a context carrying the render identifier.
func WithRenderID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, renderIDKey, id)
}

// RenderIDFromContext returns the render identifier, if any.
func RenderIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(renderIDKey).(string)
	return id, ok && id != ""
}

// WithSegmentID returns a context carrying the segment being processed.
func WithSegmentID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, segmentIDKey, id)
}

// SegmentIDFromContext returns the segment identifier, if any.
func SegmentIDFromContext(ctx context.Context) (int, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(segmentIDKey).(int)
	return id, ok
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := RenderIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRenderID, id))
	}
	if id, ok := SegmentIDFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldSegmentID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
