package discoverymanager

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"lanpeers/internal/announcement"
	discoverymodels "lanpeers/internal/discovery_manager/models"
	"lanpeers/internal/peers"
	"lanpeers/internal/util/logger/sl"

	"golang.org/x/sync/errgroup"
)

// NewPeerDiscoveryManager создает новый менеджер обнаружения пиров.
// sink может быть nil, тогда отчёты только пишутся в лог.
func NewPeerDiscoveryManager(
	config *discoverymodels.PeerDiscoveryConfig,
	transport discoverymodels.Transport,
	self announcement.Announcement,
	sink discoverymodels.PeerSink,
	log *slog.Logger,
) *PeerDiscoveryManager {
	return &PeerDiscoveryManager{
		config:    config,
		transport: transport,
		registry:  peers.NewRegistry(),
		sink:      sink,
		log:       log,
		metrics:   NewMetrics(),
		announce:  self,
		now:       time.Now,
	}
}

// Run запускает анонсер, слушатель и репортёр и блокируется до отмены ctx.
//
// Ошибка транспорта в слушателе останавливает только слушатель: анонсы и
// отчёты продолжаются, известные пиры истекают как обычно (Degraded = true).
// Паника в любом цикле останавливает все циклы и возвращается как ошибка.
func (m *PeerDiscoveryManager) Run(ctx context.Context) error {
	const op = "discovery_manager.Run"
	log := m.log.With(slog.String("op", op))

	g, gctx := errgroup.WithContext(ctx)

	if !m.config.ListenOnly {
		g.Go(m.guard(gctx, "announcer", m.runAnnouncer))
	}
	g.Go(m.guard(gctx, "listener", func(ctx context.Context) error {
		if err := m.runListener(ctx); err != nil {
			m.degraded.Store(true)
			log.Error("listener stopped, discovery is degraded", sl.Err(err))
		}
		return nil
	}))
	g.Go(m.guard(gctx, "reporter", m.runReporter))

	log.Info("peer discovery started",
		slog.String("local_addr", m.transport.LocalAddr().String()),
		slog.Bool("listen_only", m.config.ListenOnly),
	)

	err := g.Wait()
	log.Info("peer discovery stopped")
	return err
}

func (m *PeerDiscoveryManager) guard(ctx context.Context, name string, loop func(context.Context) error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.log.Error("discovery loop panicked",
					slog.String("loop", name),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				err = fmt.Errorf("%s loop panicked: %v", name, r)
			}
		}()
		return loop(ctx)
	}
}

// Announcement возвращает текущий анонс о себе.
func (m *PeerDiscoveryManager) Announcement() announcement.Announcement {
	m.announceMu.RLock()
	defer m.announceMu.RUnlock()
	return m.announce
}

// SetAnnouncement заменяет анонс о себе, начиная со следующего тика.
func (m *PeerDiscoveryManager) SetAnnouncement(name string, port uint16) {
	const op = "discovery_manager.SetAnnouncement"

	next := announcement.New(name, port)

	m.announceMu.Lock()
	prev := m.announce
	m.announce = next
	m.announceMu.Unlock()

	if prev != next {
		m.log.Info("announcement updated",
			slog.String("op", op),
			slog.String("name", name),
			slog.Int("port", int(port)),
		)
	}
}

// Peers возвращает живых пиров без собственной записи.
func (m *PeerDiscoveryManager) Peers() []peers.Peer {
	now := m.now()
	snap := m.registry.Snapshot()

	out := make([]peers.Peer, 0, len(snap))
	for _, p := range snap {
		if p.Age(now) > m.config.LivenessWindow {
			continue
		}
		out = append(out, p)
	}
	return m.withoutSelf(out)
}

// PeersJSON возвращает Peers в виде JSON-массива.
func (m *PeerDiscoveryManager) PeersJSON() ([]byte, error) {
	return json.Marshal(m.Peers())
}

func (m *PeerDiscoveryManager) Registry() *peers.Registry {
	return m.registry
}

// Degraded сообщает, что слушатель остановлен из-за ошибки транспорта.
func (m *PeerDiscoveryManager) Degraded() bool {
	return m.degraded.Load()
}

func (m *PeerDiscoveryManager) Stats() Stats {
	s := m.metrics.Stats()
	s.Degraded = m.Degraded()
	return s
}

func (m *PeerDiscoveryManager) isSelf(id peers.PeerID) bool {
	return id == m.transport.LocalAddr()
}

func (m *PeerDiscoveryManager) withoutSelf(list []peers.Peer) []peers.Peer {
	out := list[:0]
	for _, p := range list {
		if !m.isSelf(p.ID) {
			out = append(out, p)
		}
	}
	return out
}
