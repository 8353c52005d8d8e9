package cliplugins

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lanpeers/internal/config"
	"lanpeers/internal/util/logger/handlers/slogdiscard"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_PATH", "ENV", "NAME", "PORT", "INTERFACE",
	"DISCOVERY_GROUP", "DISCOVERY_PORT", "DISCOVERY_TTL",
	"DISCOVERY_ANNOUNCE_INTERVAL", "DISCOVERY_REPORT_INTERVAL", "DISCOVERY_LIVENESS_WINDOW",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		if value, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { os.Setenv(key, value) })
		}
	}
}

func discardLogger(string) *slog.Logger {
	return slogdiscard.NewDiscardLogger()
}

// parsed returns the plugin command with the root --config flag attached
// and the given flags parsed.
func parsed(t *testing.T, cmd *cobra.Command, flags ...string) *cobra.Command {
	t.Helper()
	cmd.Flags().StringP("config", "c", "", "")
	require.NoError(t, cmd.ParseFlags(flags))
	return cmd
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestApplyRunOverrides(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		flags     []string
		wantName  string
		wantPort  uint16
		wantIface string
		wantErr   bool
	}{
		{
			name:     "No overrides",
			wantName: "Player",
			wantPort: 8080,
		},
		{
			name:     "Positional name",
			args:     []string{"PlayerB"},
			wantName: "PlayerB",
			wantPort: 8080,
		},
		{
			name:      "Port and interface flags",
			args:      []string{"PlayerC"},
			flags:     []string{"--port", "9090", "--interface", "10.0.0.5"},
			wantName:  "PlayerC",
			wantPort:  9090,
			wantIface: "10.0.0.5",
		},
		{
			name:    "Blank name",
			args:    []string{"  "},
			wantErr: true,
		},
		{
			name:    "IPv6 interface",
			flags:   []string{"--interface", "::1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cmd := parsed(t, NewRunCommand(discardLogger).Meta(), tt.flags...)

			cfg, err := config.Load("")
			require.NoError(t, err)

			err = applyRunOverrides(cmd, tt.args, cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, config.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, cfg.Name)
			assert.Equal(t, tt.wantPort, cfg.Port)
			assert.Equal(t, tt.wantIface, cfg.Interface)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "name: FromFile\nport: 7000\n")

	t.Run("Explicit flag", func(t *testing.T) {
		cmd := parsed(t, NewRunCommand(discardLogger).Meta(), "--config", path)

		cfg, gotPath, err := loadConfig(cmd)
		require.NoError(t, err)
		assert.Equal(t, path, gotPath)
		assert.Equal(t, "FromFile", cfg.Name)
		assert.Equal(t, uint16(7000), cfg.Port)
	})

	t.Run("CONFIG_PATH", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", path)
		cmd := parsed(t, NewRunCommand(discardLogger).Meta())

		cfg, gotPath, err := loadConfig(cmd)
		require.NoError(t, err)
		assert.Equal(t, path, gotPath)
		assert.Equal(t, "FromFile", cfg.Name)
	})

	t.Run("Missing file", func(t *testing.T) {
		cmd := parsed(t, NewRunCommand(discardLogger).Meta(), "--config", filepath.Join(t.TempDir(), "nope.yaml"))

		_, _, err := loadConfig(cmd)
		assert.Error(t, err)
	})
}

func TestLocalIP_Explicit(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Interface = "192.168.7.7"

	ip, err := localIP(cfg)
	require.NoError(t, err)
	assert.Equal(t, "192.168.7.7", ip.String())
}

func TestDiscoveryConfig(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load("")
	require.NoError(t, err)

	dc := discoveryConfig(cfg, true)
	assert.Equal(t, 2*time.Second, dc.AnnounceInterval)
	assert.Equal(t, 5*time.Second, dc.ReportInterval)
	assert.Equal(t, 10*time.Second, dc.LivenessWindow)
	assert.True(t, dc.ListenOnly)
}

func TestScanCommand_RejectsBadDuration(t *testing.T) {
	clearEnv(t)
	cmd := parsed(t, NewScanCommand(discardLogger).Meta(), "--duration", "0s")

	err := NewScanCommand(discardLogger).Execute(context.Background(), cmd, nil)
	assert.ErrorContains(t, err, "duration must be positive")
}

func TestRunCommand_InvalidConfigFails(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "discovery:\n  group: 10.0.0.1\n")
	cmd := parsed(t, NewRunCommand(discardLogger).Meta(), "--config", path)

	err := NewRunCommand(discardLogger).Execute(context.Background(), cmd, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestCommandMeta(t *testing.T) {
	run := NewRunCommand(discardLogger)
	assert.Same(t, run.Meta(), run.Meta())
	assert.Equal(t, "run", run.Meta().Name())
	assert.NotNil(t, run.Meta().Flags().Lookup("json"))

	scan := NewScanCommand(discardLogger)
	assert.Equal(t, "scan", scan.Meta().Name())
	d, err := scan.Meta().Flags().GetDuration("duration")
	require.NoError(t, err)
	assert.Equal(t, defaultScanDuration, d)
}
