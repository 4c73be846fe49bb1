package server

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sjy-dv/scmsg/scmsg/pkg/delay"
	"github.com/sjy-dv/scmsg/scmsg/pkg/limiter"
	"github.com/sjy-dv/scmsg/scmsg/pkg/log"
	tcp "github.com/sjy-dv/scmsg/scmsg/server/tcpcore"
)

// State is the lifecycle position of an Endpoint.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

var _ tcp.Server = &Endpoint{}

// Endpoint owns one listening socket and the goroutines serving it.
// Endpoints are created and torn down by a Registry.
type Endpoint struct {
	opts     tcp.Options
	addr     string
	listener *net.TCPListener
	limiter  limiter.Limiter
	peers    *peerHistory
	handlers []tcp.EventHandler

	stateMu sync.Mutex
	state   State

	// running is shared with every Conn of this endpoint.
	running *atomic.Bool
	// clients is only mutated while holding the owning Registry's lock.
	clients atomic.Int32
	connNum atomic.Uint32

	connsMu sync.Mutex
	conns   map[string]*Conn

	// wg tracks the accept loop (from creation) and every connection goroutine.
	wg sync.WaitGroup
}

func listen(tcpAddr *net.TCPAddr, opts tcp.Options) (*Endpoint, error) {
	l, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return nil, err
	}
	peers, err := newPeerHistory(opts.PeerHistory)
	if err != nil {
		l.Close()
		return nil, err
	}
	e := &Endpoint{
		opts:     opts,
		addr:     opts.Addr,
		listener: l,
		peers:    peers,
		running:  new(atomic.Bool),
		conns:    make(map[string]*Conn),
	}
	if tcpAddr.Port == 0 {
		e.addr = l.Addr().String()
	}
	e.handlers = []tcp.EventHandler{peers}
	if opts.Handler != nil {
		e.handlers = append(e.handlers, opts.Handler)
	}
	if opts.ConnLimit > 0 {
		e.limiter = limiter.NewLimiter(opts.ConnLimit)
	}
	e.wg.Add(1)
	return e, nil
}

// Addr is the address the endpoint is registered under. For an ephemeral
// port request it is the address actually bound.
func (e *Endpoint) Addr() string {
	return e.addr
}

func (e *Endpoint) ListenAddr() net.Addr {
	return e.listener.Addr()
}

func (e *Endpoint) State() State {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.state
}

// ClientCount is the number of logical acquirers, not live sockets.
func (e *Endpoint) ClientCount() int32 {
	return e.clients.Load()
}

func (e *Endpoint) ConnNum() uint32 {
	return e.connNum.Load()
}

// RecentPeers lists recently seen connections, least recently updated first.
func (e *Endpoint) RecentPeers() []PeerInfo {
	return e.peers.list()
}

// Run accepts connections until Stop is called, the listener is closed or
// the options context is done. It returns tcp.ErrEndpointStopped when the
// endpoint already ran or was stopped before running.
func (e *Endpoint) Run() error {
	e.stateMu.Lock()
	if e.state != StateCreated {
		e.stateMu.Unlock()
		return tcp.ErrEndpointStopped
	}
	e.state = StateRunning
	e.running.Store(true)
	e.stateMu.Unlock()

	defer func() {
		e.stateMu.Lock()
		e.state = StateStopped
		e.running.Store(false)
		e.stateMu.Unlock()
		e.wg.Done()
		log.Infof("endpoint %s stopped", e.addr)
	}()
	log.Infof("endpoint %s is running", e.addr)

	ctx := e.opts.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	td := delay.NewTempDelay(e.opts.AcceptBackoffMin, e.opts.AcceptBackoffMax)
	wait := td.GetDelay()
	for e.running.Load() {
		if ctx.Err() != nil {
			e.Stop()
			break
		}
		// a deadline of one backoff step stands in for a non-blocking accept
		// followed by a sleep
		if err := e.listener.SetDeadline(time.Now().Add(wait)); err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Warnf("endpoint %s SetDeadline error:[%v]", e.addr, err)
		}
		conn, err := e.listener.AcceptTCP()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				wait = td.GetDelay()
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			d := td.GetDelay()
			log.Errorf("endpoint %s accept error:[%v], delay:%v", e.addr, err, d)
			time.Sleep(d)
			continue
		}
		td.Reset()
		wait = td.GetDelay()
		e.serveConn(conn)
	}
	return nil
}

// Stop asks the accept loop and every connection handler to finish. Live
// connections are not closed; see CloseConns.
func (e *Endpoint) Stop() {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	switch e.state {
	case StateCreated:
		e.state = StateStopped
		e.wg.Done()
		log.Infof("endpoint %s stopped before running", e.addr)
	case StateRunning:
		e.state = StateStopping
		e.running.Store(false)
		log.Infof("endpoint %s shutdown signal sent", e.addr)
	}
}

// Wait blocks until the accept loop and every connection goroutine of the
// endpoint have returned, or ctx is done.
func (e *Endpoint) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CloseConns closes every live connection so their handlers return.
func (e *Endpoint) CloseConns() {
	e.connsMu.Lock()
	conns := make([]*Conn, 0, len(e.conns))
	for _, c := range e.conns {
		conns = append(conns, c)
	}
	e.connsMu.Unlock()
	for _, c := range conns {
		if err := c.Close(); err != nil {
			log.Debugf("endpoint %s closing conn %s:[%v]", e.addr, c.ID(), err)
		}
	}
}

func (e *Endpoint) closeListener() error {
	return e.listener.Close()
}

func (e *Endpoint) serveConn(tcpConn *net.TCPConn) {
	if e.limiter != nil && !e.limiter.Allow() {
		tcpConn.Close()
		log.Warnf("endpoint %s accepted max num:%d, new conn rejected:[%v]", e.addr, e.opts.ConnLimit, tcp.ErrConnLimit)
		return
	}
	if e.opts.KeepAlivePeriod > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			log.Warnf("endpoint %s conn:%s SetKeepAlive error:[%v]", e.addr, tcpConn.RemoteAddr(), err)
		}
		if err := tcpConn.SetKeepAlivePeriod(e.opts.KeepAlivePeriod); err != nil {
			log.Warnf("endpoint %s conn:%s SetKeepAlivePeriod error:[%v]", e.addr, tcpConn.RemoteAddr(), err)
		}
		if e.opts.KeepAliveCount > 0 && e.opts.KeepAliveInterval > 0 {
			if err := setKeepaliveParameters(tcpConn, e.opts.KeepAliveCount, e.opts.KeepAliveInterval); err != nil {
				log.Warnf("endpoint %s conn:%s setKeepaliveParameters error:[%v]", e.addr, tcpConn.RemoteAddr(), err)
			}
		}
	}

	c := newConn(e, tcpConn)
	e.connsMu.Lock()
	e.conns[c.id] = c
	e.connsMu.Unlock()
	e.connNum.Add(1)
	e.wg.Add(1)
	log.Infof("endpoint %s new client connected: %s (%s)", e.addr, tcpConn.RemoteAddr(), c.id)
	go c.serve()
}

func (e *Endpoint) onConnClose(c *Conn) {
	e.connsMu.Lock()
	delete(e.conns, c.id)
	e.connsMu.Unlock()
	if e.limiter != nil {
		e.limiter.Revert()
	}
	e.connNum.Add(^uint32(0))
	e.wg.Done()
}
