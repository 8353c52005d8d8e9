package discoverymanager

import (
	"context"
	"errors"
	"net/netip"
	"sync"
	"time"

	discoverymodels "lanpeers/internal/discovery_manager/models"
	"lanpeers/internal/peers"

	"github.com/stretchr/testify/mock"
)

// MockTransport implements discoverymodels.Transport for testing
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(ctx context.Context, payload []byte) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockTransport) Receive(ctx context.Context) ([]byte, netip.AddrPort, error) {
	args := m.Called(ctx)
	payload, _ := args.Get(0).([]byte)
	src, _ := args.Get(1).(netip.AddrPort)
	return payload, src, args.Error(2)
}

func (m *MockTransport) LocalAddr() netip.AddrPort {
	args := m.Called()
	return args.Get(0).(netip.AddrPort)
}

func (m *MockTransport) Close() error {
	args := m.Called()
	return args.Error(0)
}

// blockUntilDone makes a Receive expectation wait for cancellation.
func blockUntilDone(args mock.Arguments) {
	<-args.Get(0).(context.Context).Done()
}

// recordingSink keeps every report it receives.
type recordingSink struct {
	mu      sync.Mutex
	reports [][]peers.Peer
}

func (s *recordingSink) Report(_ time.Time, alive []peers.Peer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]peers.Peer, len(alive))
	copy(cp, alive)
	s.reports = append(s.reports, cp)
	return nil
}

func (s *recordingSink) last() []peers.Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.reports) == 0 {
		return nil
	}
	return s.reports[len(s.reports)-1]
}

type panicSink struct{}

func (panicSink) Report(time.Time, []peers.Peer) error {
	panic("sink exploded")
}

type datagram struct {
	payload []byte
	src     netip.AddrPort
}

// hub is an in-memory multicast group: every Send is delivered to every
// attached endpoint, the sender included, like multicast loopback.
type hub struct {
	mu        sync.Mutex
	endpoints []*hubTransport
}

func (h *hub) attach(addr string) *hubTransport {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := &hubTransport{
		hub:   h,
		addr:  netip.MustParseAddrPort(addr),
		inbox: make(chan datagram, 256),
	}
	h.endpoints = append(h.endpoints, t)
	return t
}

func (h *hub) broadcast(d datagram) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ep := range h.endpoints {
		select {
		case ep.inbox <- d:
		default:
		}
	}
}

type hubTransport struct {
	hub   *hub
	addr  netip.AddrPort
	inbox chan datagram
}

var _ discoverymodels.Transport = (*hubTransport)(nil)

func (t *hubTransport) Send(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	t.hub.broadcast(datagram{payload: cp, src: t.addr})
	return nil
}

func (t *hubTransport) Receive(ctx context.Context) ([]byte, netip.AddrPort, error) {
	select {
	case <-ctx.Done():
		return nil, netip.AddrPort{}, ctx.Err()
	case d := <-t.inbox:
		return d.payload, d.src, nil
	}
}

func (t *hubTransport) LocalAddr() netip.AddrPort {
	return t.addr
}

func (t *hubTransport) Close() error {
	return errors.New("not implemented")
}
