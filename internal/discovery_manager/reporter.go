package discoverymanager

import (
	"context"
	"log/slog"
	"time"

	"lanpeers/internal/util/logger/sl"
)

// runReporter каждые ReportInterval удаляет устаревших пиров и
// передаёт текущий список в sink.
func (m *PeerDiscoveryManager) runReporter(ctx context.Context) error {
	ticker := time.NewTicker(m.config.ReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.report(m.now())
		}
	}
}

func (m *PeerDiscoveryManager) report(now time.Time) {
	const op = "discovery_manager.report"
	log := m.log.With(slog.String("op", op))

	alive, evicted := m.registry.EvictAndSnapshot(now, m.config.LivenessWindow)

	m.metrics.RecordEvicted(len(evicted))
	for _, p := range evicted {
		if m.isSelf(p.ID) {
			continue
		}
		log.Info("Peer expired",
			slog.String("address", p.ID.String()),
			slog.String("name", p.Name),
			slog.Duration("silent_for", p.Age(now)),
		)
	}

	alive = m.withoutSelf(alive)

	if m.sink != nil {
		if err := m.sink.Report(now, alive); err != nil {
			log.Warn("failed to report peers", sl.Err(err))
		}
	}

	stats := m.Stats()
	log.Debug("discovery stats",
		slog.Int("alive", len(alive)),
		slog.Int64("sent", stats.AnnouncementsSent),
		slog.Int64("send_errors", stats.SendErrors),
		slog.Int64("received", stats.DatagramsReceived),
		slog.Int64("decode_errors", stats.DecodeErrors),
		slog.Int64("evicted", stats.PeersEvicted),
		slog.Bool("degraded", stats.Degraded),
	)
}
