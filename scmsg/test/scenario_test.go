package test

import (
	"net"
	"testing"
	"time"

	"github.com/sjy-dv/scmsg/scmsg/client"
	"github.com/sjy-dv/scmsg/scmsg/message"
	"github.com/sjy-dv/scmsg/scmsg/server"
	tcp "github.com/sjy-dv/scmsg/scmsg/server/tcpcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

// three clients share one endpoint, each holding one registry claim
func TestThreeClientScenario(t *testing.T) {
	addr := freeAddr(t)
	reg := server.NewRegistry()

	var ep *server.Endpoint
	for i := 0; i < 3; i++ {
		got, err := reg.Acquire(addr)
		require.NoError(t, err)
		if ep == nil {
			ep = got
			go ep.Run()
		}
		require.Same(t, ep, got)
	}
	assert.EqualValues(t, 3, ep.ClientCount())

	clients := make([]*client.Client, 3)
	for i := range clients {
		clients[i] = client.NewClient(tcp.WithAddr(addr), tcp.WithTimeout(2*time.Second, 2*time.Second))
		require.NoError(t, clients[i].Connect())
	}
	for _, c := range clients {
		resp, err := c.Call(message.NewEchoRequest("ping"))
		require.NoError(t, err)
		assert.Equal(t, message.NewEchoResponse("ping"), resp)
	}
	for _, c := range clients {
		resp, err := c.Call(message.NewAddRequest(2, 3))
		require.NoError(t, err)
		assert.Equal(t, message.NewAddResponse(5), resp)
	}
	for _, c := range clients {
		require.NoError(t, c.Disconnect())
	}
	require.Eventually(t, func() bool {
		return ep.ConnNum() == 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, reg.Release(addr))
	_, ok := reg.Lookup(addr)
	assert.True(t, ok)
	require.NoError(t, reg.Release(addr))
	_, ok = reg.Lookup(addr)
	assert.True(t, ok)
	assert.Equal(t, server.StateRunning, ep.State())

	require.NoError(t, reg.Release(addr))
	_, ok = reg.Lookup(addr)
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())

	require.Eventually(t, func() bool {
		return ep.State() == server.StateStopped
	}, 2*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, reg.Release(addr), tcp.ErrNotRegistered)
}
