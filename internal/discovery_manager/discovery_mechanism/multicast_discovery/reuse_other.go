//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly || windows)

package multicastdiscovery

import "syscall"

func reuseControl(_ bool) func(network, address string, c syscall.RawConn) error {
	return nil
}
