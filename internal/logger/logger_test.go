package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kcenon/threadmon/internal/config"
	"github.com/kcenon/threadmon/internal/svccontext"
)

func TestNewBuildsWithoutPanicking(t *testing.T) {
	assert.NotPanics(t, func() {
		l := New(config.LoggerConfig{Level: "debug", Format: "console", OutputPath: "stdout"})
		l.Log(svccontext.LevelInfo, "hello")
	})
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	base := New(config.LoggerConfig{Level: "info", Format: "json", OutputPath: "stdout"})
	child := base.WithFields(map[string]interface{}{"worker_id": "w-1"})

	assert.NotContains(t, base.fields, "worker_id")
	assert.Contains(t, child.fields, "worker_id")
}

func TestWithContextExtractsCorrelationFields(t *testing.T) {
	base := New(config.LoggerConfig{Level: "info", Format: "json", OutputPath: "stdout"})
	ctx := context.WithValue(context.Background(), "requestID", "req-1")

	child := base.WithContext(ctx)
	assert.Equal(t, "req-1", child.fields["requestID"])
}

func TestIsEnabledAlwaysTrue(t *testing.T) {
	l := New(config.LoggerConfig{Level: "error", Format: "json", OutputPath: "stdout"})
	assert.True(t, l.IsEnabled(svccontext.LevelDebug))
}
