package logger

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		enable zapcore.Level
	}{
		{"Debug console", Config{Level: "debug", Format: "console"}, zapcore.DebugLevel},
		{"Info json", Config{Level: "info", Format: "json"}, zapcore.InfoLevel},
		{"Warn json", Config{Level: "warn", Format: "json"}, zapcore.WarnLevel},
		{"Unknown level falls back to info", Config{Level: "loud"}, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(&tt.cfg)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.enable))
			assert.False(t, l.Core().Enabled(tt.enable-1))
		})
	}
}

func TestWithGuild(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core)

	WithGuild(l, "42").Info("scoped")
	WithGuild(l, "").Info("unscoped")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "42", entries[0].ContextMap()["guild_id"])
	_, ok := entries[1].ContextMap()["guild_id"]
	assert.False(t, ok)
}

func TestWithRayID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals("ray_id", "ray-1")
		WithRayID(l, c).Info("request")
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.Len(t, logs.All(), 1)
	assert.Equal(t, "ray-1", logs.All()[0].ContextMap()["ray_id"])
}
