package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	require.Error(t, err)
}

func TestGetBeforeInitIsNop(t *testing.T) {
	assert.NotNil(t, Get())
}

func TestWithContextAddsIDs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := context.WithValue(context.Background(), SessionIDKey, "s-1")
	ctx = context.WithValue(ctx, RequestIDKey, "r-1")
	WithContext(ctx, base).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "s-1", fields["session_id"])
	assert.Equal(t, "r-1", fields["request_id"])
}
