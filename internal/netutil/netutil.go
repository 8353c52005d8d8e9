// Package netutil выбирает локальный IPv4-интерфейс для multicast.
package netutil

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
)

var ErrNoIPv4 = errors.New("no usable IPv4 interface")

// LocalIPv4 возвращает наиболее подходящий IPv4-адрес хоста.
// Предпочтение: 192.168/16, 172.16/12, 10/8, затем остальные.
// Если ничего не найдено, возвращается 127.0.0.1.
func LocalIPv4() (netip.Addr, error) {
	ifaceAddrs, err := net.InterfaceAddrs()
	if err != nil {
		return netip.Addr{}, fmt.Errorf("list interface addresses: %w", err)
	}

	addrs := make([]netip.Addr, 0, len(ifaceAddrs))
	for _, a := range ifaceAddrs {
		if prefix, err := netip.ParsePrefix(a.String()); err == nil {
			addrs = append(addrs, prefix.Addr().Unmap())
		}
	}
	return PickIPv4(addrs), nil
}

// PickIPv4 выбирает адрес из списка по тем же правилам, что и LocalIPv4.
func PickIPv4(addrs []netip.Addr) netip.Addr {
	var best netip.Addr
	bestScore := -1

	for _, a := range addrs {
		if !a.Is4() {
			continue
		}
		sc := score(a)
		if sc < 0 {
			continue
		}
		if sc > bestScore {
			bestScore = sc
			best = a
		}
		if bestScore >= 100 {
			return best
		}
	}
	if best.IsValid() {
		return best
	}

	for _, a := range addrs {
		if a.Is4() && !a.IsLoopback() && !a.IsLinkLocalUnicast() {
			return a
		}
	}
	return netip.AddrFrom4([4]byte{127, 0, 0, 1})
}

func score(a netip.Addr) int {
	if a.IsLoopback() || a.IsLinkLocalUnicast() || a.IsMulticast() || a.IsUnspecified() {
		return -1
	}
	o := a.As4()
	switch {
	case o[0] == 192 && o[1] == 168:
		return 100
	case o[0] == 172 && o[1] >= 16 && o[1] <= 31:
		return 90
	case o[0] == 10:
		return 80
	default:
		return 10
	}
}

// InterfaceFor находит сетевой интерфейс, которому принадлежит адрес.
// Для адресов без интерфейса возвращает nil: ОС выберет интерфейс сама.
func InterfaceFor(addr netip.Addr) (*net.Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	for i := range ifaces {
		ifaceAddrs, err := ifaces[i].Addrs()
		if err != nil {
			continue
		}
		for _, a := range ifaceAddrs {
			prefix, err := netip.ParsePrefix(a.String())
			if err != nil {
				continue
			}
			if prefix.Addr().Unmap() == addr {
				return &ifaces[i], nil
			}
		}
	}
	return nil, nil
}
