package editorcontext

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
)

func TestEditorIDFromContext(t *testing.T) {
	if _, ok := EditorIDFromContext(context.Background()); ok {
		t.Fatal("expected no editor on empty context")
	}
	if EditorPtr(context.Background()) != nil {
		t.Fatal("expected nil editor pointer on empty context")
	}

	ctx := WithEditorID(context.Background(), snowflake.ID(42))
	id, ok := EditorIDFromContext(ctx)
	if !ok || id != 42 {
		t.Fatalf("expected editor 42, got %d (%v)", id, ok)
	}
	if ptr := EditorPtr(ctx); ptr == nil || *ptr != 42 {
		t.Fatalf("expected editor pointer 42, got %v", ptr)
	}

	ctx = context.WithValue(context.Background(), EditorContextKey{}, "77")
	if id, ok := EditorIDFromContext(ctx); !ok || id != 77 {
		t.Fatalf("expected editor 77 from string, got %d (%v)", id, ok)
	}

	ctx = WithEditorID(context.Background(), 0)
	if _, ok := EditorIDFromContext(ctx); ok {
		t.Fatal("zero editor must not count as set")
	}
}
