package cliplugins

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"

	"lanpeers/internal/config"
	multicastdiscovery "lanpeers/internal/discovery_manager/discovery_mechanism/multicast_discovery"
	discoverymodels "lanpeers/internal/discovery_manager/models"
	"lanpeers/internal/netutil"

	"github.com/spf13/cobra"
)

// LoggerFactory создаёт корневой логгер для окружения из конфигурации.
type LoggerFactory func(env string) *slog.Logger

// loadConfig читает конфигурацию по флагу --config или CONFIG_PATH.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	explicit, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", fmt.Errorf("flag --config failed: %w", err)
	}
	path := config.Path(explicit)

	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func localIP(cfg *config.Config) (netip.Addr, error) {
	if cfg.Interface != "" {
		// формат уже проверен в config.Validate
		return netip.ParseAddr(cfg.Interface)
	}
	return netutil.LocalIPv4()
}

func openTransport(ctx context.Context, cfg *config.Config, log *slog.Logger) (*multicastdiscovery.MulticastDiscovery, error) {
	ip, err := localIP(cfg)
	if err != nil {
		return nil, err
	}
	return multicastdiscovery.Open(ctx, multicastdiscovery.Config{
		Group: cfg.Discovery.GroupAddr(),
		TTL:   cfg.Discovery.TTL,
	}, ip, log)
}

func discoveryConfig(cfg *config.Config, listenOnly bool) *discoverymodels.PeerDiscoveryConfig {
	return &discoverymodels.PeerDiscoveryConfig{
		AnnounceInterval: cfg.Discovery.AnnounceInterval,
		ReportInterval:   cfg.Discovery.ReportInterval,
		LivenessWindow:   cfg.Discovery.LivenessWindow,
		ListenOnly:       listenOnly,
	}
}
