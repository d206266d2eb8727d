package services

import "context"

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	stageKey      contextKey = "stage"
	stageIndexKey contextKey = "stage_index"
)

// WithRunID annotates context with the pipeline run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the pipeline run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStageIndex annotates context with the numeric stage index.
func WithStageIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, stageIndexKey, index)
}

// StageIndexFromContext returns the stage index if present.
func StageIndexFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(stageIndexKey)
	if v == nil {
		return 0, false
	}
	if idx, ok := v.(int); ok {
		return idx, true
	}
	return 0, false
}
