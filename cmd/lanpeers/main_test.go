package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		env     string
		json    bool
		debugOn bool
	}{
		{env: "local", json: false, debugOn: true},
		{env: envDev, json: true, debugOn: true},
		{env: envProd, json: true, debugOn: false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			buf := new(bytes.Buffer)
			log := setupLogger(tt.env, buf)
			require.NotNil(t, log)

			assert.Equal(t, tt.debugOn, log.Enabled(context.Background(), slog.LevelDebug))

			log.Info("hello", slog.String("name", "PlayerA"))
			if tt.json {
				var entry map[string]any
				require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
				assert.Equal(t, "hello", entry["msg"])
				assert.Equal(t, "PlayerA", entry["name"])
			} else {
				assert.Contains(t, buf.String(), "hello")
				assert.Contains(t, buf.String(), "PlayerA")
			}
		})
	}
}
