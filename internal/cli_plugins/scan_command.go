package cliplugins

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lanpeers/internal/announcement"
	discoverymanager "lanpeers/internal/discovery_manager"

	"github.com/spf13/cobra"
)

const defaultScanDuration = 6 * time.Second

// ScanCommand слушает группу, не анонсируя себя, и печатает найденных пиров.
type ScanCommand struct {
	cmd       *cobra.Command
	newLogger LoggerFactory
}

func NewScanCommand(newLogger LoggerFactory) *ScanCommand {
	return &ScanCommand{newLogger: newLogger}
}

func (s *ScanCommand) Meta() *cobra.Command {
	if s.cmd != nil {
		return s.cmd
	}
	s.cmd = &cobra.Command{
		Use:   "scan",
		Short: "Listen for peers without announcing and print them as JSON",
		Args:  cobra.NoArgs,
	}
	s.cmd.Flags().DurationP("duration", "d", defaultScanDuration, "how long to listen")
	s.cmd.Flags().StringP("interface", "i", "", "local IPv4 address to use (default: auto)")
	return s.cmd
}

func (s *ScanCommand) Execute(ctx context.Context, cmd *cobra.Command, _ []string) error {
	const op = "cli_plugins.ScanCommand.Execute"

	duration, err := cmd.Flags().GetDuration("duration")
	if err != nil {
		return fmt.Errorf("flag --duration failed: %w", err)
	}
	if duration <= 0 {
		return fmt.Errorf("%s: duration must be positive, got %s", op, duration)
	}

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if cmd.Flags().Changed("interface") {
		cfg.Interface, _ = cmd.Flags().GetString("interface")
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	log := s.newLogger(cfg.Env)

	transport, err := openTransport(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer transport.Close()

	mgr := discoverymanager.NewPeerDiscoveryManager(
		discoveryConfig(cfg, true),
		transport,
		announcement.New(cfg.Name, cfg.Port),
		nil,
		log,
	)

	scanCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	log.Info("scanning for peers", slog.String("op", op), slog.Duration("duration", duration))
	if err := mgr.Run(scanCtx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	data, err := mgr.PeersJSON()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
