package multicastdiscovery

import (
	"errors"
	"log/slog"
	"net"
	"net/netip"
	"sync"
	"time"

	"golang.org/x/net/ipv4"
)

const (
	// интервал, с которым Receive проверяет отмену контекста
	readPollInterval = time.Second
	sendTimeout      = time.Second
	readBufferSize   = 1 << 20
)

var ErrTransport = errors.New("multicast transport error")

// Config описывает группу и параметры сокетов.
type Config struct {
	Group netip.AddrPort
	TTL   int
}

// MulticastDiscovery реализует транспорт обнаружения через UDP multicast.
// Отправка и приём идут через разные сокеты, оба с SO_REUSEADDR.
type MulticastDiscovery struct {
	cfg   Config
	iface *net.Interface
	log   *slog.Logger

	senderConn   *ipv4.PacketConn
	listenerConn *ipv4.PacketConn
	group        *net.UDPAddr
	localAddr    netip.AddrPort

	bufPool   sync.Pool
	closeOnce sync.Once
	closeErr  error
}
