package discoverymodels

import (
	"context"
	"net/netip"
	"time"

	"lanpeers/internal/peers"
)

// Transport представляет собой канал датаграмм, привязанный к multicast-группе
type Transport interface {
	// Send отправляет полезную нагрузку в группу (best effort)
	Send(ctx context.Context, payload []byte) error

	// Receive блокируется до получения датаграммы или отмены ctx
	Receive(ctx context.Context) ([]byte, netip.AddrPort, error)

	// LocalAddr возвращает адрес, с которого уходят наши анонсы
	LocalAddr() netip.AddrPort

	// Close закрывает сокеты
	Close() error
}

// PeerSink получает текущий список живых пиров от репортёра
type PeerSink interface {
	Report(now time.Time, alive []peers.Peer) error
}

// PeerDiscoveryConfig содержит конфигурацию для обнаружения пиров
type PeerDiscoveryConfig struct {
	AnnounceInterval time.Duration
	ReportInterval   time.Duration
	LivenessWindow   time.Duration
	// ListenOnly отключает анонсы (режим сканирования)
	ListenOnly bool
}
