package discoverymanager

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"lanpeers/internal/announcement"
	discoverymodels "lanpeers/internal/discovery_manager/models"
	"lanpeers/internal/peers"
)

// PeerDiscoveryManager запускает анонсы, приём анонсов и отчёты о пирах
// поверх одного транспорта и одного реестра.
type PeerDiscoveryManager struct {
	config    *discoverymodels.PeerDiscoveryConfig
	transport discoverymodels.Transport
	registry  *peers.Registry
	sink      discoverymodels.PeerSink
	log       *slog.Logger
	metrics   *Metrics

	announceMu sync.RWMutex
	announce   announcement.Announcement

	degraded atomic.Bool
	now      func() time.Time
}

// Stats это снимок счётчиков менеджера.
type Stats struct {
	AnnouncementsSent int64     `json:"announcements_sent"`
	SendErrors        int64     `json:"send_errors"`
	DatagramsReceived int64     `json:"datagrams_received"`
	DecodeErrors      int64     `json:"decode_errors"`
	PeersDiscovered   int64     `json:"peers_discovered"`
	PeersEvicted      int64     `json:"peers_evicted"`
	LastReceive       time.Time `json:"last_receive,omitempty"`
	Degraded          bool      `json:"degraded"`
}
