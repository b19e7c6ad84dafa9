package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerInstanceFromContext_PrefersInjectedLogger(t *testing.T) {
	injected := NewLogger(&bytes.Buffer{}, slog.LevelInfo)
	ctx := ContextWithLogger(context.Background(), injected)

	got := GetLoggerInstanceFromContext(ctx, NewLogger(&bytes.Buffer{}, slog.LevelInfo))
	assert.Same(t, injected, got)
}

func TestGetLoggerInstanceFromContext_FallbackCarriesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	fallback := NewLogger(&buf, slog.LevelInfo)
	ctx := context.WithValue(context.Background(), CorrelatedIDKey, "corr-123")

	GetLoggerInstanceFromContext(ctx, fallback).Info("hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "corr-123", record["correlation_id"])
	assert.Equal(t, "hello", record["msg"])
}

func TestGetOrGenerateCorrelationID_GeneratesWhenMissing(t *testing.T) {
	id := GetOrGenerateCorrelationID(context.Background())
	assert.Len(t, id, 36)
	assert.NotEqual(t, id, GetOrGenerateCorrelationID(context.Background()))
}
