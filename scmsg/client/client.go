// Package client is a synchronous peer for scmsg endpoints: one request,
// one response, in order, over one TCP connection.
package client

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/sjy-dv/scmsg/scmsg/message"
	"github.com/sjy-dv/scmsg/scmsg/pkg/log"
	tcp "github.com/sjy-dv/scmsg/scmsg/server/tcpcore"
)

type Client struct {
	opts   tcp.Options
	conn   net.Conn
	buf    []byte
	closed int32
}

func NewClient(opts ...tcp.Option) *Client {
	return &Client{opts: tcp.NewOptions(opts...)}
}

// Connect dials the configured address within DialTimeout.
func (c *Client) Connect() error {
	if c.conn != nil && !c.Closed() {
		return nil
	}
	log.Debugf("connecting to %s", c.opts.Addr)
	conn, err := net.DialTimeout("tcp", c.opts.Addr, c.opts.DialTimeout)
	if err != nil {
		return err
	}
	c.conn = conn
	c.buf = make([]byte, c.opts.ReadBufLen)
	atomic.StoreInt32(&c.closed, 0)
	return nil
}

func (c *Client) Connected() bool {
	return c.conn != nil && !c.Closed()
}

// Send writes one request. The empty envelope encodes to zero bytes, so
// sending it writes nothing.
func (c *Client) Send(req message.Request) error {
	return c.SendRaw(req.Marshal())
}

// SendRaw writes data as is.
func (c *Client) SendRaw(data []byte) error {
	if !c.Connected() {
		return tcp.ErrNotConnected
	}
	_ = c.conn.SetWriteDeadline(c.getWriteDeadLine())
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("write:%w", err)
	}
	return nil
}

// Receive reads one response with a single read of ReadBufLen bytes.
func (c *Client) Receive() (message.Response, error) {
	if !c.Connected() {
		return message.Response{}, tcp.ErrNotConnected
	}
	_ = c.conn.SetReadDeadline(c.getReadDeadLine())
	n, err := c.conn.Read(c.buf)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return message.Response{}, tcp.ErrPeerDisconnected
		}
		return message.Response{}, fmt.Errorf("read:%w", err)
	}
	resp, err := message.UnmarshalResponse(c.buf[:n])
	if err != nil {
		return message.Response{}, fmt.Errorf("%w: %v", tcp.ErrMalformedMessage, err)
	}
	if resp.Empty() {
		log.Warn("received empty server message")
	}
	return resp, nil
}

// Call sends req and waits for its response.
func (c *Client) Call(req message.Request) (message.Response, error) {
	if err := c.Send(req); err != nil {
		return message.Response{}, err
	}
	return c.Receive()
}

// Disconnect closes the connection. It is a no-op when not connected.
func (c *Client) Disconnect() error {
	if c.conn == nil || !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) Closed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

func (c *Client) RemoteAddr() net.Addr {
	if c.conn == nil {
		return nil
	}
	return c.conn.RemoteAddr()
}

func (c *Client) LocalAddr() net.Addr {
	if c.conn == nil {
		return nil
	}
	return c.conn.LocalAddr()
}

func (c *Client) getReadDeadLine() (t time.Time) {
	if c.opts.ReadTimeout > 0 {
		t = time.Now().Add(c.opts.ReadTimeout)
	}
	return
}

func (c *Client) getWriteDeadLine() (t time.Time) {
	if c.opts.WriteTimeout > 0 {
		t = time.Now().Add(c.opts.WriteTimeout)
	}
	return
}
