package tcpcore

import (
	"errors"
)

var (
	ErrAddressInUseByOther = errors.New("addr:in use by another process")
	ErrInvalidAddress      = errors.New("addr:invalid")
	ErrNotRegistered       = errors.New("registry:address not registered")
	ErrEndpointStopped     = errors.New("endpoint:stopped")
	ErrConnLimit           = errors.New("endpoint:connection limit reached")
	ErrPeerDisconnected    = errors.New("conn:peer disconnected")
	ErrMalformedMessage    = errors.New("conn:malformed message")
	ErrEmptyEnvelope       = errors.New("conn:empty envelope")
	ErrWriteFailed         = errors.New("conn:write failed")
	ErrNotConnected        = errors.New("conn:not connected")
)
