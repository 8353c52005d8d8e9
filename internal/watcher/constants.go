package watcher

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	DefaultDebounceDuration = 300 * time.Millisecond
	DefaultBufferSize       = 16
)

var (
	// События, за которыми мы следим. Редакторы часто сохраняют файл через
	// rename, поэтому Create и Rename тоже считаются изменением.
	WatchedEvents = fsnotify.Create | fsnotify.Write | fsnotify.Rename

	// Файловые паттерны, которые нужно игнорировать
	IgnoredPatterns = []string{
		".swp",
		"~",
	}
)
