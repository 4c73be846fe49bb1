package server

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	tcp "github.com/sjy-dv/scmsg/scmsg/server/tcpcore"
)

// PeerInfo describes one accepted connection.
type PeerInfo struct {
	ID       string
	Remote   string
	OpenedAt time.Time
	ClosedAt time.Time
	Err      string
}

// peerHistory keeps the most recently accepted connections of an endpoint.
type peerHistory struct {
	cache *lru.Cache[string, PeerInfo]
}

var _ tcp.EventHandler = &peerHistory{}

func newPeerHistory(size int) (*peerHistory, error) {
	if size <= 0 {
		size = tcp.DefaultPeerHistory
	}
	cache, err := lru.New[string, PeerInfo](size)
	if err != nil {
		return nil, err
	}
	return &peerHistory{cache: cache}, nil
}

func (p *peerHistory) OnOpened(c tcp.Conn) {
	p.cache.Add(c.ID(), PeerInfo{
		ID:       c.ID(),
		Remote:   c.RemoteAddr().String(),
		OpenedAt: c.OpenedAt(),
	})
}

func (p *peerHistory) OnClosed(c tcp.Conn, err error) {
	info, ok := p.cache.Peek(c.ID())
	if !ok {
		return
	}
	info.ClosedAt = time.Now()
	if err != nil {
		info.Err = err.Error()
	}
	p.cache.Add(c.ID(), info)
}

func (p *peerHistory) list() []PeerInfo {
	keys := p.cache.Keys()
	out := make([]PeerInfo, 0, len(keys))
	for _, k := range keys {
		if info, ok := p.cache.Peek(k); ok {
			out = append(out, info)
		}
	}
	return out
}
