package discoverymanager

import (
	"context"
	"log/slog"
	"time"

	"lanpeers/internal/util/logger/sl"
)

// runAnnouncer отправляет анонс сразу и затем каждые AnnounceInterval.
// Ошибки отправки не останавливают цикл, повтор на следующем тике.
func (m *PeerDiscoveryManager) runAnnouncer(ctx context.Context) error {
	ticker := time.NewTicker(m.config.AnnounceInterval)
	defer ticker.Stop()

	for {
		m.announceOnce(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (m *PeerDiscoveryManager) announceOnce(ctx context.Context) {
	const op = "discovery_manager.announceOnce"

	a := m.Announcement()
	payload, err := a.Encode()
	if err != nil {
		m.metrics.RecordSendError()
		m.log.Error("failed to encode announcement", slog.String("op", op), sl.Err(err))
		return
	}

	if err := m.transport.Send(ctx, payload); err != nil {
		if ctx.Err() != nil {
			return
		}
		m.metrics.RecordSendError()
		m.log.Warn("announcement send failed", slog.String("op", op), sl.Err(err))
		return
	}
	m.metrics.RecordSent()
}
