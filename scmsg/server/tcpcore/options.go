package tcpcore

import (
	"context"
	"time"
)

const (
	DefaultReadBufLen       = 1024
	DefaultAcceptBackoffMin = time.Millisecond
	DefaultAcceptBackoffMax = 10 * time.Millisecond
	DefaultKeepAlivePeriod  = time.Minute
	DefaultPeerHistory      = 128
	DefaultDialTimeout      = 5 * time.Second

	DefaultKeepAliveCount    = 6
	DefaultKeepAliveInterval = 10
)

type Options struct {
	Ctx  context.Context
	Addr string
	// ReadBufLen is the capacity of the single read a message must fit in.
	ReadBufLen uint32
	// ConnLimit caps live connections per endpoint, 0 means unlimited.
	ConnLimit    uint32
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DialTimeout  time.Duration

	AcceptBackoffMin time.Duration
	AcceptBackoffMax time.Duration

	KeepAlivePeriod time.Duration
	// KeepAliveCount and KeepAliveInterval(seconds) tune probes where supported.
	KeepAliveCount    int
	KeepAliveInterval int

	// PeerHistory is the number of recently seen connections kept per endpoint.
	PeerHistory int
	Handler     EventHandler
}

type Option func(*Options)

func DefaultOptions() Options {
	return Options{
		Ctx:               context.Background(),
		ReadBufLen:        DefaultReadBufLen,
		DialTimeout:       DefaultDialTimeout,
		AcceptBackoffMin:  DefaultAcceptBackoffMin,
		AcceptBackoffMax:  DefaultAcceptBackoffMax,
		KeepAlivePeriod:   DefaultKeepAlivePeriod,
		KeepAliveCount:    DefaultKeepAliveCount,
		KeepAliveInterval: DefaultKeepAliveInterval,
		PeerHistory:       DefaultPeerHistory,
		Handler:           DefaultEventHandler(),
	}
}

// NewOptions applies opts on top of DefaultOptions.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		o.Ctx = ctx
	}
}

func WithAddr(addr string) Option {
	return func(o *Options) {
		o.Addr = addr
	}
}

func WithReadBufLen(n uint32) Option {
	return func(o *Options) {
		if n > 0 {
			o.ReadBufLen = n
		}
	}
}

func WithConnLimit(n uint32) Option {
	return func(o *Options) {
		o.ConnLimit = n
	}
}

func WithTimeout(read, write time.Duration) Option {
	return func(o *Options) {
		o.ReadTimeout = read
		o.WriteTimeout = write
	}
}

func WithDialTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.DialTimeout = d
	}
}

func WithAcceptBackoff(min, max time.Duration) Option {
	return func(o *Options) {
		o.AcceptBackoffMin = min
		o.AcceptBackoffMax = max
	}
}

func WithKeepAlive(period time.Duration, count, interval int) Option {
	return func(o *Options) {
		o.KeepAlivePeriod = period
		o.KeepAliveCount = count
		o.KeepAliveInterval = interval
	}
}

func WithPeerHistory(n int) Option {
	return func(o *Options) {
		o.PeerHistory = n
	}
}

func WithEventHandler(h EventHandler) Option {
	return func(o *Options) {
		if h != nil {
			o.Handler = h
		}
	}
}
