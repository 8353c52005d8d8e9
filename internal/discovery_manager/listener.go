package discoverymanager

import (
	"context"
	"log/slog"
	"net/netip"

	"lanpeers/internal/announcement"
	"lanpeers/internal/util/logger/sl"
)

// runListener принимает анонсы до отмены ctx. Возвращает ошибку только
// при сбое транспорта.
func (m *PeerDiscoveryManager) runListener(ctx context.Context) error {
	for {
		payload, src, err := m.transport.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		m.handleDatagram(payload, src)
	}
}

// handleDatagram обрабатывает одну датаграмму. Некорректные сообщения
// отбрасываются и не попадают в реестр.
func (m *PeerDiscoveryManager) handleDatagram(payload []byte, src netip.AddrPort) {
	const op = "discovery_manager.handleDatagram"

	now := m.now()
	m.metrics.RecordReceived(now)

	msg, err := announcement.Decode(payload)
	if err != nil {
		m.metrics.RecordDecodeError()
		m.log.Debug("discarding malformed announcement",
			slog.String("op", op),
			slog.String("from", src.String()),
			sl.Err(err),
		)
		return
	}

	created := m.registry.Upsert(src, msg.Name, msg.Port, now)
	if created && !m.isSelf(src) {
		m.metrics.RecordDiscovered()
		m.log.Info("New peer discovered",
			slog.String("op", op),
			slog.String("address", src.String()),
			slog.String("name", msg.Name),
			slog.Int("port", int(msg.Port)),
		)
	}
}
