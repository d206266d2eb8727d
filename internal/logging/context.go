package logging

import (
	"context"
	"log/slog"

	"sluice/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for pipeline run identifiers.
	FieldRunID = "run_id"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldStageIndex is the standardized structured logging key for numeric stage indices.
	FieldStageIndex = "stage_index"
	// FieldEventType tags lifecycle events (stage_start, stage_complete, stage_skipped, stage_failure).
	FieldEventType = "event_type"
	// FieldTool is the standardized structured logging key for external tool names.
	FieldTool = "tool"
	// FieldArtifact is the standardized structured logging key for artifact paths.
	FieldArtifact = "artifact"
	// FieldVocabSize tags log lines emitted by the BPE fan-out with their size entry.
	FieldVocabSize = "vocab_size"
)

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if index, ok := services.StageIndexFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldStageIndex, index))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
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
