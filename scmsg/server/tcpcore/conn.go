package tcpcore

import (
	"net"
	"time"
)

// Conn is the view of one accepted connection handed to an EventHandler.
type Conn interface {
	// ID is unique per accepted connection.
	ID() string
	// RemoteAddr returns the remote network address.
	RemoteAddr() net.Addr
	// LocalAddr returns the endpoint address the connection was accepted on.
	LocalAddr() net.Addr
	// OpenedAt is the accept time.
	OpenedAt() time.Time
	// Close closes the connection, a blocked read returns.
	Close() error
	// Closed
	Closed() bool
}
