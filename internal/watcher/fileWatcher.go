package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"lanpeers/internal/util/logger/handlers/slogdiscard"
	"lanpeers/internal/util/logger/sl"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher следит за отдельными файлами и вызывает Reloader после
// серии изменений. Наблюдение идёт за родительской директорией, чтобы
// переживать сохранение через rename.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	reloader  Reloader
	errors    chan error
	config    Config
	log       *slog.Logger
	debouncer *Debouncer
	metrics   *WatcherMetrics
	files     map[string]struct{}
	dirs      map[string]struct{}
	closed    bool
	stopChan  chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	mu        sync.RWMutex
}

func NewFileWatcher(r Reloader, config Config) (*FileWatcher, error) {
	if config.DebounceDuration == 0 {
		config.DebounceDuration = DefaultDebounceDuration
	}
	if config.BufferSize == 0 {
		config.BufferSize = DefaultBufferSize
	}
	if config.IgnorePatterns == nil {
		config.IgnorePatterns = IgnoredPatterns
	}
	if config.Logger == nil {
		config.Logger = slogdiscard.NewDiscardLogger()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher:   watcher,
		reloader:  r,
		errors:    make(chan error, config.BufferSize),
		config:    config,
		log:       config.Logger.With(slog.String("component", "watcher")),
		debouncer: NewDebouncer(config.DebounceDuration),
		metrics:   NewWatcherMetrics(),
		files:     make(map[string]struct{}),
		dirs:      make(map[string]struct{}),
		stopChan:  make(chan struct{}),
	}

	fw.wg.Add(1)
	go fw.run()

	return fw, nil
}

// Watch начинает наблюдение за файлом.
func (fw *FileWatcher) Watch(path string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.closed {
		return ErrWatcherClosed
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	// Проверяем существование пути
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidPath, abs)
	}

	if _, exists := fw.files[abs]; exists {
		return fmt.Errorf("%w: %s", ErrPathAlreadyWatched, abs)
	}

	dir := filepath.Dir(abs)
	if _, exists := fw.dirs[dir]; !exists {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		fw.dirs[dir] = struct{}{}
	}
	fw.files[abs] = struct{}{}

	fw.log.Debug("watching file", slog.String("path", abs))
	return nil
}

func (fw *FileWatcher) run() {
	defer fw.wg.Done()
	defer close(fw.errors)

	for {
		select {
		case <-fw.stopChan:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if fw.shouldProcessEvent(event) {
				fw.processEvent(event)
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.handleError(err)
		}
	}
}

func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	// Проверяем, что это событие, которое нас интересует
	if event.Op&WatchedEvents == 0 {
		return false
	}

	// Проверяем игнорируемые паттерны
	for _, pattern := range fw.config.IgnorePatterns {
		if strings.Contains(event.Name, pattern) {
			return false
		}
	}

	fw.mu.RLock()
	defer fw.mu.RUnlock()
	_, watched := fw.files[filepath.Clean(event.Name)]
	return watched
}

func (fw *FileWatcher) processEvent(event fsnotify.Event) {
	fw.metrics.RecordEvent(event.Op)

	path := filepath.Clean(event.Name)
	fw.debouncer.Debounce(path, func() {
		if err := fw.reloader.Reload(path); err != nil {
			fw.handleError(fmt.Errorf("failed to reload %s: %w", path, err))
			return
		}
		fw.metrics.RecordReload()
	})
}

func (fw *FileWatcher) handleError(err error) {
	fw.metrics.RecordError()
	fw.log.Debug("watcher error", sl.Err(err))

	fw.mu.RLock()
	defer fw.mu.RUnlock()
	if fw.closed {
		return
	}

	select {
	case fw.errors <- err:
	default:
		fw.log.Warn("error buffer full, dropping error", sl.Err(err))
	}
}

func (fw *FileWatcher) Close() error {
	var closeErr error

	fw.closeOnce.Do(func() {
		fw.mu.Lock()
		fw.closed = true
		fw.mu.Unlock()

		close(fw.stopChan)
		fw.wg.Wait()
		fw.debouncer.Stop()

		if err := fw.watcher.Close(); err != nil {
			closeErr = fmt.Errorf("failed to close watcher: %w", err)
		}
	})

	return closeErr
}

func (fw *FileWatcher) Errors() <-chan error {
	return fw.errors
}

func (fw *FileWatcher) Metrics() *WatcherMetrics {
	return fw.metrics
}
