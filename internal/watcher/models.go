package watcher

import (
	"log/slog"
	"time"
)

// Reloader перечитывает изменившийся файл конфигурации.
type Reloader interface {
	Reload(path string) error
}

// ReloaderFunc позволяет использовать функцию как Reloader.
type ReloaderFunc func(path string) error

func (f ReloaderFunc) Reload(path string) error {
	return f(path)
}

// Config содержит настройки для FileWatcher
type Config struct {
	DebounceDuration time.Duration
	BufferSize       int
	IgnorePatterns   []string
	Logger           *slog.Logger
}
