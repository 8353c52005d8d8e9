package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cliplugins "lanpeers/internal/cli_plugins"
	"lanpeers/internal/util/logger/handlers/slogpretty"
	"lanpeers/pkg/cli"

	"github.com/google/uuid"
)

const (
	envDev  = "dev"
	envProd = "prod"
)

// version задаётся при сборке через -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Создаем контекст с отменой для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	instance := uuid.NewString()
	newLogger := func(env string) *slog.Logger {
		// stdout занят списком пиров, логи пишем в stderr
		return setupLogger(env, os.Stderr).With(slog.String("instance", instance))
	}

	CLI := cli.NewCLI(ctx, "lanpeers", "Discover peers on the local network via UDP multicast")
	CLI.RegisterPlugin(cliplugins.NewRunCommand(newLogger))
	CLI.RegisterPlugin(cliplugins.NewScanCommand(newLogger))
	CLI.RegisterPlugin(&cli.VersionCommand{Version: version, Instance: instance})

	if err := CLI.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func setupLogger(env string, writer io.Writer) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envDev:
		log = slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		// local и всё неизвестное
		log = setupPrettySlog(writer)
	}
	return log
}

func setupPrettySlog(writer io.Writer) *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(writer)

	return slog.New(handler)
}
