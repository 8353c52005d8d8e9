package multicastdiscovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"lanpeers/internal/announcement"
	"lanpeers/internal/netutil"
	"lanpeers/internal/util/logger/sl"

	"golang.org/x/net/ipv4"
)

// Open создает сокеты отправки и приёма, присоединяется к группе на
// интерфейсе, которому принадлежит localIP.
func Open(ctx context.Context, cfg Config, localIP netip.Addr, log *slog.Logger) (*MulticastDiscovery, error) {
	const op = "multicast_discovery.Open"

	if !cfg.Group.Addr().Is4() || !cfg.Group.Addr().IsMulticast() {
		return nil, fmt.Errorf("%w: %s is not an IPv4 multicast group", ErrTransport, cfg.Group)
	}
	if !localIP.Is4() {
		return nil, fmt.Errorf("%w: local address %s is not IPv4", ErrTransport, localIP)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 1
	}

	iface, err := netutil.InterfaceFor(localIP)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	m := &MulticastDiscovery{
		cfg:   cfg,
		iface: iface,
		log:   log.With(slog.String("discovery", "multicast"), slog.String("op", op)),
		group: net.UDPAddrFromAddrPort(cfg.Group),
	}
	m.bufPool.New = func() any {
		b := make([]byte, announcement.MaxDatagramSize)
		return &b
	}

	if err := m.openSender(ctx, localIP); err != nil {
		return nil, err
	}
	if err := m.openListener(ctx); err != nil {
		m.senderConn.Close()
		return nil, err
	}

	m.log.Info("multicast transport opened",
		slog.String("group", cfg.Group.String()),
		slog.String("local_addr", m.localAddr.String()),
		slog.String("interface", ifaceName(iface)),
		slog.Int("ttl", cfg.TTL),
	)
	return m, nil
}

func (m *MulticastDiscovery) openSender(ctx context.Context, localIP netip.Addr) error {
	lc := net.ListenConfig{Control: reuseControl(false)}
	pc, err := lc.ListenPacket(ctx, "udp4", netip.AddrPortFrom(localIP, 0).String())
	if err != nil {
		return fmt.Errorf("%w: bind announce socket on %s: %w", ErrTransport, localIP, err)
	}

	conn := ipv4.NewPacketConn(pc)
	if err := m.setupMulticast(conn); err != nil {
		pc.Close()
		return err
	}
	if m.iface != nil {
		if err := conn.SetMulticastInterface(m.iface); err != nil {
			pc.Close()
			return fmt.Errorf("%w: set multicast interface %s: %w", ErrTransport, m.iface.Name, err)
		}
	}

	m.senderConn = conn
	m.localAddr = unmap(pc.LocalAddr().(*net.UDPAddr).AddrPort())
	return nil
}

func (m *MulticastDiscovery) openListener(ctx context.Context) error {
	lc := net.ListenConfig{Control: reuseControl(true)}
	pc, err := lc.ListenPacket(ctx, "udp4", fmt.Sprintf("0.0.0.0:%d", m.cfg.Group.Port()))
	if err != nil {
		return fmt.Errorf("%w: bind listen socket on port %d: %w", ErrTransport, m.cfg.Group.Port(), err)
	}

	conn := ipv4.NewPacketConn(pc)
	if err := conn.JoinGroup(m.iface, &net.UDPAddr{IP: m.group.IP}); err != nil {
		pc.Close()
		return fmt.Errorf("%w: join group %s on %s: %w", ErrTransport, m.group.IP, ifaceName(m.iface), err)
	}
	if err := m.setupMulticast(conn); err != nil {
		pc.Close()
		return err
	}

	// Установка размера буфера для UDP
	if udp, ok := pc.(*net.UDPConn); ok {
		if err := udp.SetReadBuffer(readBufferSize); err != nil {
			m.log.Warn("set read buffer", sl.Err(err))
		}
	}

	m.listenerConn = conn
	return nil
}

func (m *MulticastDiscovery) setupMulticast(conn *ipv4.PacketConn) error {
	if err := conn.SetMulticastLoopback(true); err != nil {
		return fmt.Errorf("%w: enable multicast loopback: %w", ErrTransport, err)
	}
	if err := conn.SetMulticastTTL(m.cfg.TTL); err != nil {
		return fmt.Errorf("%w: set multicast ttl %d: %w", ErrTransport, m.cfg.TTL, err)
	}
	return nil
}

// Name возвращает имя механизма
func (m *MulticastDiscovery) Name() string {
	return "multicast"
}

// LocalAddr возвращает адрес сокета отправки.
func (m *MulticastDiscovery) LocalAddr() netip.AddrPort {
	return m.localAddr
}

// Send отправляет полезную нагрузку в группу. Никогда не блокируется
// дольше sendTimeout.
func (m *MulticastDiscovery) Send(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline := time.Now().Add(sendTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := m.senderConn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("%w: set write deadline: %w", ErrTransport, err)
	}

	if _, err := m.senderConn.WriteTo(payload, nil, m.group); err != nil {
		return fmt.Errorf("%w: send to %s: %w", ErrTransport, m.group, err)
	}
	return nil
}

// Receive ждёт следующую датаграмму. Таймауты чтения используются только
// для проверки отмены ctx.
func (m *MulticastDiscovery) Receive(ctx context.Context) ([]byte, netip.AddrPort, error) {
	bufp := m.bufPool.Get().(*[]byte)
	defer m.bufPool.Put(bufp)
	buf := *bufp

	for {
		if err := ctx.Err(); err != nil {
			return nil, netip.AddrPort{}, err
		}

		if err := m.listenerConn.SetReadDeadline(time.Now().Add(readPollInterval)); err != nil {
			return nil, netip.AddrPort{}, fmt.Errorf("%w: set read deadline: %w", ErrTransport, err)
		}

		n, _, src, err := m.listenerConn.ReadFrom(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue // продолжаем слушать, если это ошибка таймаута
			}
			if ctx.Err() != nil {
				return nil, netip.AddrPort{}, ctx.Err()
			}
			return nil, netip.AddrPort{}, fmt.Errorf("%w: receive: %w", ErrTransport, err)
		}

		udpAddr, ok := src.(*net.UDPAddr)
		if !ok {
			continue
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		return payload, unmap(udpAddr.AddrPort()), nil
	}
}

// Close закрывает оба сокета. Повторный вызов безопасен.
func (m *MulticastDiscovery) Close() error {
	m.closeOnce.Do(func() {
		if m.listenerConn != nil {
			_ = m.listenerConn.LeaveGroup(m.iface, &net.UDPAddr{IP: m.group.IP})
		}
		m.closeErr = errors.Join(closeConn(m.listenerConn), closeConn(m.senderConn))
	})
	return m.closeErr
}

func closeConn(c *ipv4.PacketConn) error {
	if c == nil {
		return nil
	}
	return c.Close()
}

func unmap(ap netip.AddrPort) netip.AddrPort {
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
}

func ifaceName(iface *net.Interface) string {
	if iface == nil {
		return "default"
	}
	return iface.Name
}
