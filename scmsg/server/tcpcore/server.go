package tcpcore

import "context"

type Server interface {
	// Run accepts connections until Stop is called.
	// It blocks the calling goroutine.
	Run() error
	// Stop asks the accept loop and every connection handler to finish.
	// It never blocks and is safe to call more than once.
	Stop()
	// Wait blocks until the accept loop and every connection handler
	// have returned, or ctx is done.
	Wait(ctx context.Context) error
	// ConnNum returns the number of currently active connections
	ConnNum() uint32
}
