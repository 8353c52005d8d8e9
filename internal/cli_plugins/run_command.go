package cliplugins

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"lanpeers/internal/announcement"
	"lanpeers/internal/config"
	discoverymanager "lanpeers/internal/discovery_manager"
	"lanpeers/internal/util/logger/sl"
	"lanpeers/internal/watcher"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// RunCommand анонсирует себя в группе и печатает живых пиров до Ctrl+C.
type RunCommand struct {
	cmd       *cobra.Command
	newLogger LoggerFactory
}

func NewRunCommand(newLogger LoggerFactory) *RunCommand {
	return &RunCommand{newLogger: newLogger}
}

func (r *RunCommand) Meta() *cobra.Command {
	if r.cmd != nil {
		return r.cmd
	}
	r.cmd = &cobra.Command{
		Use:   "run [name]",
		Short: "Announce this instance and print peers on the LAN",
		Long: "Joins the multicast group, announces the given name and port every " +
			"announce interval and prints the list of live peers every report interval.",
		Args: cobra.MaximumNArgs(1),
	}
	r.cmd.Flags().Uint16P("port", "p", 0, "service port to announce")
	r.cmd.Flags().StringP("interface", "i", "", "local IPv4 address to use (default: auto)")
	r.cmd.Flags().Bool("json", false, "print peer lists as JSON")
	return r.cmd
}

func (r *RunCommand) Execute(ctx context.Context, cmd *cobra.Command, args []string) error {
	const op = "cli_plugins.RunCommand.Execute"

	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := applyRunOverrides(cmd, args, cfg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log := r.newLogger(cfg.Env)

	transport, err := openTransport(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer transport.Close()

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("flag --json failed: %w", err)
	}

	var mgr *discoverymanager.PeerDiscoveryManager
	out := cmd.OutOrStdout()
	printer := discoverymanager.NewPeerPrinter(out, discoverymanager.PrinterOptions{
		JSON:  asJSON,
		Color: isTerminal(out),
		Self:  func() string { return mgr.Announcement().Name },
	})

	mgr = discoverymanager.NewPeerDiscoveryManager(
		discoveryConfig(cfg, false),
		transport,
		announcement.New(cfg.Name, cfg.Port),
		printer,
		log,
	)

	if path != "" {
		fw, err := watchConfig(path, cmd, args, mgr, log)
		if err != nil {
			// без перезагрузки конфигурации можно работать дальше
			log.Warn("config reload disabled", slog.String("op", op), sl.Err(err))
		} else {
			defer fw.Close()
		}
	}

	log.Info("starting peer discovery",
		slog.String("op", op),
		slog.String("name", cfg.Name),
		slog.Int("port", int(cfg.Port)),
		slog.String("group", cfg.Discovery.GroupAddr().String()),
	)

	return mgr.Run(ctx)
}

// applyRunOverrides накладывает аргументы командной строки поверх конфигурации.
func applyRunOverrides(cmd *cobra.Command, args []string, cfg *config.Config) error {
	if len(args) == 1 {
		cfg.Name = args[0]
	}
	if cmd.Flags().Changed("port") {
		port, err := cmd.Flags().GetUint16("port")
		if err != nil {
			return fmt.Errorf("flag --port failed: %w", err)
		}
		cfg.Port = port
	}
	if cmd.Flags().Changed("interface") {
		iface, err := cmd.Flags().GetString("interface")
		if err != nil {
			return fmt.Errorf("flag --interface failed: %w", err)
		}
		cfg.Interface = iface
	}
	return cfg.Validate()
}

// watchConfig перечитывает файл конфигурации при изменении и обновляет анонс.
// Настройки сокетов и интервалов применяются только при перезапуске.
func watchConfig(
	path string,
	cmd *cobra.Command,
	args []string,
	mgr *discoverymanager.PeerDiscoveryManager,
	log *slog.Logger,
) (*watcher.FileWatcher, error) {
	const op = "cli_plugins.watchConfig"

	reload := watcher.ReloaderFunc(func(string) error {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := applyRunOverrides(cmd, args, cfg); err != nil {
			return err
		}
		mgr.SetAnnouncement(cfg.Name, cfg.Port)
		return nil
	})

	fw, err := watcher.NewFileWatcher(reload, watcher.Config{Logger: log})
	if err != nil {
		return nil, err
	}
	if err := fw.Watch(path); err != nil {
		fw.Close()
		return nil, err
	}

	go func() {
		for err := range fw.Errors() {
			log.Warn("config reload failed", slog.String("op", op), sl.Err(err))
		}
	}()

	return fw, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
