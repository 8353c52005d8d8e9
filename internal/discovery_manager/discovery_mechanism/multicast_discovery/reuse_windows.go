//go:build windows

package multicastdiscovery

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// На Windows SO_REUSEADDR уже позволяет разделять порт между процессами.
func reuseControl(_ bool) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			sockErr = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
		})
		if err != nil {
			return err
		}
		return sockErr
	}
}
