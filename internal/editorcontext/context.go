package editorcontext

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// EditorContextKey is the context key for the identity performing a write.
type EditorContextKey struct{}

// WithEditorID stores the editor ID in the context.
func WithEditorID(ctx context.Context, editorID snowflake.ID) context.Context {
	return context.WithValue(ctx, EditorContextKey{}, editorID)
}

// EditorIDFromContext returns the editor ID from context, if set.
func EditorIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	switch typed := ctx.Value(EditorContextKey{}).(type) {
	case snowflake.ID:
		return typed, typed != 0
	case int64:
		return snowflake.ID(typed), typed != 0
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil && parsed != 0 {
			return parsed, true
		}
	}
	return 0, false
}

// EditorPtr returns the editor ID as a nullable column value.
func EditorPtr(ctx context.Context) *snowflake.ID {
	id, ok := EditorIDFromContext(ctx)
	if !ok {
		return nil
	}
	return &id
}
