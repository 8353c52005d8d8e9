package watcher

import (
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatcherMetrics struct {
	eventsProcessed int64
	reloads         int64
	errors          int64
	lastEventTime   atomic.Int64
}

func NewWatcherMetrics() *WatcherMetrics {
	return &WatcherMetrics{}
}

func (m *WatcherMetrics) RecordEvent(op fsnotify.Op) {
	atomic.AddInt64(&m.eventsProcessed, 1)
	m.lastEventTime.Store(time.Now().UnixNano())
}

func (m *WatcherMetrics) RecordReload() {
	atomic.AddInt64(&m.reloads, 1)
}

func (m *WatcherMetrics) RecordError() {
	atomic.AddInt64(&m.errors, 1)
}

func (m *WatcherMetrics) GetStats() map[string]interface{} {
	var last time.Time
	if ns := m.lastEventTime.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}
	return map[string]interface{}{
		"events_processed": atomic.LoadInt64(&m.eventsProcessed),
		"reloads":          atomic.LoadInt64(&m.reloads),
		"errors":           atomic.LoadInt64(&m.errors),
		"last_event_time":  last,
	}
}
