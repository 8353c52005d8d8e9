package discoverymanager

import (
	"sync/atomic"
	"time"
)

type Metrics struct {
	announcementsSent atomic.Int64
	sendErrors        atomic.Int64
	datagramsReceived atomic.Int64
	decodeErrors      atomic.Int64
	peersDiscovered   atomic.Int64
	peersEvicted      atomic.Int64
	lastReceive       atomic.Int64 // unix nano
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordSent() {
	m.announcementsSent.Add(1)
}

func (m *Metrics) RecordSendError() {
	m.sendErrors.Add(1)
}

func (m *Metrics) RecordReceived(at time.Time) {
	m.datagramsReceived.Add(1)
	m.lastReceive.Store(at.UnixNano())
}

func (m *Metrics) RecordDecodeError() {
	m.decodeErrors.Add(1)
}

func (m *Metrics) RecordDiscovered() {
	m.peersDiscovered.Add(1)
}

func (m *Metrics) RecordEvicted(n int) {
	m.peersEvicted.Add(int64(n))
}

func (m *Metrics) Stats() Stats {
	s := Stats{
		AnnouncementsSent: m.announcementsSent.Load(),
		SendErrors:        m.sendErrors.Load(),
		DatagramsReceived: m.datagramsReceived.Load(),
		DecodeErrors:      m.decodeErrors.Load(),
		PeersDiscovered:   m.peersDiscovered.Load(),
		PeersEvicted:      m.peersEvicted.Load(),
	}
	if ns := m.lastReceive.Load(); ns != 0 {
		s.LastReceive = time.Unix(0, ns)
	}
	return s
}
