package logger

import (
	"context"
	"testing"
)

func TestWithLogger_FromContext(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Info("test message")

	if buf.Len() == 0 {
		t.Error("Logger from context should produce output")
	}
}

func TestFromContext_Default(t *testing.T) {
	if l := FromContext(context.Background()); l == nil {
		t.Error("FromContext should return default logger, got nil")
	}
}

func TestConnID(t *testing.T) {
	ctx := context.Background()
	if got := ConnIDFromContext(ctx); got != "" {
		t.Errorf("ConnIDFromContext() = %q, want empty", got)
	}

	ctx = WithConnID(ctx, "01J0000000000000000000000")
	if got := ConnIDFromContext(ctx); got != "01J0000000000000000000000" {
		t.Errorf("ConnIDFromContext() = %q", got)
	}
}

func TestL_WithConnID(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	ctx := WithLogger(context.Background(), l)
	ctx = WithConnID(ctx, "conn-1")
	L(ctx).Info("accepted")

	entry := decodeEntry(t, buf)
	if entry["conn_id"] != "conn-1" {
		t.Errorf("conn_id = %v, want conn-1", entry["conn_id"])
	}
}

func TestL_NoConnID(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	L(WithLogger(context.Background(), l)).Info("accepted")

	entry := decodeEntry(t, buf)
	if _, ok := entry["conn_id"]; ok {
		t.Error("Should not have conn_id when not set")
	}
}
