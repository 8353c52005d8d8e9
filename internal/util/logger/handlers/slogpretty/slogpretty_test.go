package slogpretty

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestPrettyHandler_Handle(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	opts := PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug},
	}
	log := slog.New(opts.NewPrettyHandler(&buf))

	log.With(slog.String("op", "test.Handle")).
		WithGroup("peer").
		Info("peer discovered", slog.String("name", "PlayerB"))

	out := buf.String()
	assert.Contains(t, out, "INFO:")
	assert.Contains(t, out, "peer discovered")
	assert.Contains(t, out, `"op": "test.Handle"`)
	assert.Contains(t, out, `"peer.name": "PlayerB"`)
}

func TestPrettyHandler_Level(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	log := slog.New(PrettyHandlerOptions{}.NewPrettyHandler(&buf))

	assert.False(t, log.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, log.Enabled(context.Background(), slog.LevelInfo))
}
