package server

import (
	"net"

	"golang.org/x/sys/unix"
)

// Sets additional keepalive parameters
// count: probe count
// interval: retry interval(seconds)
func setKeepaliveParameters(conn *net.TCPConn, count, interval int) error {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	err = rawConn.Control(
		func(fd uintptr) {
			// probe count
			if sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPCNT, count); sockErr != nil {
				return
			}
			// retry interval after an unsuccessful probe
			sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, interval)
		})
	if err != nil {
		return err
	}
	return sockErr
}
