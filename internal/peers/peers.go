// Package peers хранит реестр обнаруженных в сети участников.
package peers

import (
	"net/netip"
	"sort"
	"sync"
	"time"
)

// PeerID идентифицирует участника по адресу источника датаграммы,
// а не по имени: имена могут совпадать.
type PeerID = netip.AddrPort

// Record содержит последние полученные от участника данные.
type Record struct {
	Name     string    `json:"name"`
	Port     uint16    `json:"port"`
	LastSeen time.Time `json:"-"`
}

type Peer struct {
	ID PeerID `json:"addr"`
	Record
}

// Addr возвращает адрес сервиса участника: IP источника и объявленный порт.
func (p Peer) Addr() netip.AddrPort {
	return netip.AddrPortFrom(p.ID.Addr(), p.Port)
}

// Age возвращает время, прошедшее с последнего анонса.
func (p Peer) Age(now time.Time) time.Duration {
	return now.Sub(p.LastSeen)
}

// Registry это потокобезопасное отображение PeerID -> Record.
// Все операции выполняются под одной блокировкой на всю структуру.
type Registry struct {
	sync.RWMutex
	peers map[PeerID]Record
}

func NewRegistry() *Registry {
	return &Registry{
		peers: make(map[PeerID]Record),
	}
}

// Upsert добавляет участника или перезаписывает его запись.
// LastSeen никогда не уменьшается. Возвращает true, если участник новый.
func (r *Registry) Upsert(id PeerID, name string, port uint16, now time.Time) (created bool) {
	r.Lock()
	defer r.Unlock()

	prev, exists := r.peers[id]
	if exists && prev.LastSeen.After(now) {
		now = prev.LastSeen
	}
	r.peers[id] = Record{
		Name:     name,
		Port:     port,
		LastSeen: now,
	}
	return !exists
}

// EvictStale удаляет записи, у которых now - LastSeen > window,
// и возвращает удалённых участников.
func (r *Registry) EvictStale(now time.Time, window time.Duration) []Peer {
	r.Lock()
	defer r.Unlock()

	return r.evictLocked(now, window)
}

// Snapshot возвращает независимую копию всех записей.
func (r *Registry) Snapshot() []Peer {
	r.RLock()
	defer r.RUnlock()

	return r.snapshotLocked()
}

// EvictAndSnapshot выполняет EvictStale и Snapshot в одной критической секции,
// так что между ними не может вклиниться Upsert.
func (r *Registry) EvictAndSnapshot(now time.Time, window time.Duration) (alive, evicted []Peer) {
	r.Lock()
	defer r.Unlock()

	evicted = r.evictLocked(now, window)
	alive = r.snapshotLocked()
	return alive, evicted
}

func (r *Registry) Get(id PeerID) (Record, bool) {
	r.RLock()
	defer r.RUnlock()

	rec, found := r.peers[id]
	return rec, found
}

func (r *Registry) Len() int {
	r.RLock()
	defer r.RUnlock()

	return len(r.peers)
}

func (r *Registry) evictLocked(now time.Time, window time.Duration) []Peer {
	var evicted []Peer
	for id, rec := range r.peers {
		if now.Sub(rec.LastSeen) > window {
			evicted = append(evicted, Peer{ID: id, Record: rec})
			delete(r.peers, id)
		}
	}
	sortPeers(evicted)
	return evicted
}

func (r *Registry) snapshotLocked() []Peer {
	out := make([]Peer, 0, len(r.peers))
	for id, rec := range r.peers {
		out = append(out, Peer{ID: id, Record: rec})
	}
	sortPeers(out)
	return out
}

func sortPeers(list []Peer) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name == list[j].Name {
			return list[i].ID.Compare(list[j].ID) < 0
		}
		return list[i].Name < list[j].Name
	})
}
