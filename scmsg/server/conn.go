package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sjy-dv/scmsg/scmsg/message"
	"github.com/sjy-dv/scmsg/scmsg/pkg/log"
	tcp "github.com/sjy-dv/scmsg/scmsg/server/tcpcore"
)

var _ tcp.Conn = &Conn{}

// Conn serves one accepted socket: read one request, dispatch it, write
// one response, repeat. No state survives between requests.
type Conn struct {
	id       string
	ep       *Endpoint
	conn     *net.TCPConn
	running  *atomic.Bool
	openedAt time.Time
	closed   atomic.Bool
}

func newConn(ep *Endpoint, conn *net.TCPConn) *Conn {
	return &Conn{
		id:       uuid.NewString(),
		ep:       ep,
		conn:     conn,
		running:  ep.running,
		openedAt: time.Now(),
	}
}

func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *Conn) OpenedAt() time.Time {
	return c.openedAt
}

func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.conn.Close()
}

func (c *Conn) Closed() bool {
	return c.closed.Load()
}

func (c *Conn) getReadDeadLine() (t time.Time) {
	if c.ep.opts.ReadTimeout > 0 {
		t = time.Now().Add(c.ep.opts.ReadTimeout)
	}
	return
}

func (c *Conn) getWriteDeadLine() (t time.Time) {
	if c.ep.opts.WriteTimeout > 0 {
		t = time.Now().Add(c.ep.opts.WriteTimeout)
	}
	return
}

func (c *Conn) serve() {
	var err error
	defer func() {
		c.Close()
		for _, h := range c.ep.handlers {
			h.OnClosed(c, err)
		}
		c.ep.onConnClose(c)
	}()
	for _, h := range c.ep.handlers {
		h.OnOpened(c)
	}

	buf := make([]byte, c.ep.opts.ReadBufLen)
	for c.running.Load() {
		if err = c.handle(buf); err != nil {
			break
		}
	}
	switch {
	case err == nil:
		err = tcp.ErrEndpointStopped
		log.Infof("conn %s finished, endpoint %s is stopping", c.id, c.ep.addr)
	case errors.Is(err, tcp.ErrPeerDisconnected):
		log.Infof("conn %s (%s) disconnected", c.id, c.RemoteAddr())
	default:
		log.Warnf("conn %s (%s) handler error:[%v]", c.id, c.RemoteAddr(), err)
	}
}

// handle processes exactly one request. A nil return keeps the connection.
func (c *Conn) handle(buf []byte) error {
	if err := c.conn.SetReadDeadline(c.getReadDeadLine()); err != nil {
		log.Debugf("conn %s SetReadDeadline error:[%v]", c.id, err)
	}
	n, err := c.conn.Read(buf)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return tcp.ErrPeerDisconnected
		}
		return fmt.Errorf("read:%w", err)
	}
	if n == len(buf) {
		// TODO: length-prefix frames so a request larger than ReadBufLen is
		// not cut at the buffer boundary and decoded in pieces.
		log.Warnf("conn %s filled the %d byte read buffer, message may be truncated", c.id, len(buf))
	}

	req, err := message.UnmarshalRequest(buf[:n])
	if err != nil {
		log.Errorf("conn %s failed to decode message:[%v]", c.id, err)
		return fmt.Errorf("%w: %v", tcp.ErrMalformedMessage, err)
	}
	log.Debugf("conn %s received %s", c.id, req)

	resp, err := Dispatch(req)
	if errors.Is(err, tcp.ErrEmptyEnvelope) {
		log.Errorf("conn %s received message with no content", c.id)
		return nil
	}
	if err != nil {
		return err
	}

	if err := c.conn.SetWriteDeadline(c.getWriteDeadLine()); err != nil {
		log.Debugf("conn %s SetWriteDeadline error:[%v]", c.id, err)
	}
	if _, err := c.conn.Write(resp.Marshal()); err != nil {
		return fmt.Errorf("%w: %v", tcp.ErrWriteFailed, err)
	}
	return nil
}
