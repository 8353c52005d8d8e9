//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package multicastdiscovery

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseControl включает SO_REUSEADDR и, для сокета приёма, SO_REUSEPORT,
// чтобы несколько процессов на одном хосте могли слушать один порт.
func reuseControl(reusePort bool) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			if sockErr == nil && reusePort {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			}
		})
		if err != nil {
			return err
		}
		return sockErr
	}
}
