package logger

import (
	"context"

	"github.com/smallbiznis/scrooge/internal/editorcontext"
	"go.uber.org/zap"
)

// FromContext returns the global logger enriched with the editor carried by ctx.
func FromContext(ctx context.Context) *zap.Logger {
	return WithContext(ctx, zap.L())
}

// WithContext enriches base with request-scoped metadata found in ctx.
func WithContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if ctx == nil {
		return base
	}
	if editorID, ok := editorcontext.EditorIDFromContext(ctx); ok {
		return base.With(zap.String("editor_id", editorID.String()))
	}
	return base
}
