package server

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"syscall"

	"github.com/google/btree"
	"github.com/sjy-dv/scmsg/scmsg/pkg/log"
	tcp "github.com/sjy-dv/scmsg/scmsg/server/tcpcore"
)

type entry struct {
	addr string
	ep   *Endpoint
}

func lessEntry(a, b *entry) bool {
	return a.addr < b.addr
}

// Registry maps bind addresses to shared Endpoints. The first Acquire of an
// address binds it; the Release that brings its client count to zero stops
// the endpoint, closes the listener and erases the entry.
//
// Keys are the literal address strings passed to Acquire, so
// "localhost:9001" and "127.0.0.1:9001" are different keys competing for
// the same socket. A request for port 0 always creates a new endpoint,
// registered under the address actually bound (Endpoint.Addr).
type Registry struct {
	mu   sync.Mutex
	tree *btree.BTreeG[*entry]
	opts []tcp.Option
}

// NewRegistry returns an empty Registry. opts are applied to every endpoint
// it creates.
func NewRegistry(opts ...tcp.Option) *Registry {
	return &Registry{
		tree: btree.NewG[*entry](32, lessEntry),
		opts: opts,
	}
}

// Acquire returns the endpoint for addr, creating and binding it when absent.
// Every successful call must be paired with one Release.
//
// An endpoint stopped by its options context stays registered, with its
// listener bound, until its last client releases it. Acquiring its address
// meanwhile returns that stopped endpoint with the count incremented, and
// its Run returns tcp.ErrEndpointStopped. The address can be bound again
// only after every holder has released it.
func (r *Registry) Acquire(addr string) (*Endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.tree.Get(&entry{addr: addr}); ok {
		n := e.ep.clients.Add(1)
		if st := e.ep.State(); st == StateStopping || st == StateStopped {
			log.Warnf("endpoint for address %s is %s, client count %d", addr, st, n)
			return e.ep, nil
		}
		log.Warnf("endpoint for address %s already exists, client count %d", addr, n)
		return e.ep, nil
	}

	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", tcp.ErrInvalidAddress, addr, err)
	}
	opts := tcp.NewOptions(append(append([]tcp.Option{}, r.opts...), tcp.WithAddr(addr))...)
	ep, err := listen(tcpAddr, opts)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			log.Errorf("address %s is already in use", addr)
			return nil, fmt.Errorf("%w: %s", tcp.ErrAddressInUseByOther, addr)
		}
		log.Errorf("failed to bind to address %s:[%v]", addr, err)
		return nil, err
	}
	ep.clients.Store(1)
	r.tree.ReplaceOrInsert(&entry{addr: ep.Addr(), ep: ep})
	log.Infof("endpoint %s created, %d endpoints registered", ep.Addr(), r.tree.Len())
	return ep, nil
}

// Release drops one claim on addr. The claim that brings the client count
// to zero stops the endpoint and closes its listener; live connections keep
// running until they end or Endpoint.CloseConns is called.
func (r *Registry) Release(addr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tree.Get(&entry{addr: addr})
	if !ok {
		log.Warnf("release of unregistered address %s", addr)
		return fmt.Errorf("%w: %s", tcp.ErrNotRegistered, addr)
	}
	n := e.ep.clients.Add(-1)
	if n > 0 {
		log.Infof("endpoint %s still has %d active clients", addr, n)
		return nil
	}
	e.ep.Stop()
	// closing a listener does not block
	if err := e.ep.closeListener(); err != nil {
		log.Warnf("endpoint %s close listener error:[%v]", addr, err)
	}
	r.tree.Delete(e)
	log.Infof("endpoint %s removed, %d endpoints registered", addr, r.tree.Len())
	return nil
}

func (r *Registry) Lookup(addr string) (*Endpoint, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.tree.Get(&entry{addr: addr})
	if !ok {
		return nil, false
	}
	return e.ep, true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tree.Len()
}

// Endpoints returns the registered endpoints ordered by address.
func (r *Registry) Endpoints() []*Endpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Endpoint, 0, r.tree.Len())
	r.tree.Ascend(func(e *entry) bool {
		out = append(out, e.ep)
		return true
	})
	return out
}
