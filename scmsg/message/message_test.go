package message

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestWireLayout(t *testing.T) {
	assert.Equal(t,
		[]byte{0x0a, 0x06, 0x0a, 0x04, 'p', 'i', 'n', 'g'},
		NewEchoRequest("ping").Marshal())
	assert.Equal(t,
		[]byte{0x12, 0x04, 0x08, 0x02, 0x10, 0x03},
		NewAddRequest(2, 3).Marshal())
	assert.Equal(t, []byte{0x0a, 0x00}, NewEchoRequest("").Marshal())
	assert.Empty(t, Request{}.Marshal())
}

func TestResponseWireLayout(t *testing.T) {
	assert.Equal(t, []byte{0x12, 0x02, 0x08, 0x05}, NewAddResponse(5).Marshal())
	assert.Equal(t, []byte{0x12, 0x00}, NewAddResponse(0).Marshal())
}

func TestRequestRoundTrip(t *testing.T) {
	for _, req := range []Request{
		NewEchoRequest("hello, world"),
		NewEchoRequest(""),
		NewEchoRequest("ünïcødé ✓"),
		NewAddRequest(-7, 3),
		NewAddRequest(math.MaxInt32, math.MinInt32),
		{},
	} {
		got, err := UnmarshalRequest(req.Marshal())
		require.NoError(t, err, req.String())
		assert.Equal(t, req, got)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	for _, resp := range []Response{
		NewEchoResponse("pong"),
		NewAddResponse(math.MinInt32),
		{},
	} {
		got, err := UnmarshalResponse(resp.Marshal())
		require.NoError(t, err, resp.String())
		assert.Equal(t, resp, got)
	}
}

func TestUnknownFieldsGiveEmptyEnvelope(t *testing.T) {
	// field 5, varint 1
	req, err := UnmarshalRequest([]byte{0x28, 0x01})
	require.NoError(t, err)
	assert.True(t, req.Empty())
}

func TestLastPayloadWins(t *testing.T) {
	data := append(NewEchoRequest("first").Marshal(), NewAddRequest(1, 1).Marshal()...)
	req, err := UnmarshalRequest(data)
	require.NoError(t, err)
	assert.Equal(t, NewAddRequest(1, 1), req)
}

func TestMalformed(t *testing.T) {
	cases := map[string][]byte{
		"truncated varint":   {0xff},
		"field zero":         {0x00, 0x01},
		"truncated embedded": {0x0a, 0x06, 0x0a},
		"echo as varint":     {0x08, 0x01},
		"content as varint":  {0x0a, 0x02, 0x08, 0x01},
		"invalid utf8":       {0x0a, 0x03, 0x0a, 0x01, 0xff},
	}
	for name, data := range cases {
		_, err := UnmarshalRequest(data)
		assert.Error(t, err, name)
	}

	_, err := UnmarshalRequest([]byte{0x0a, 0x03, 0x0a, 0x01, 0xff})
	assert.True(t, errors.Is(err, ErrInvalidUTF8))
}

func TestString(t *testing.T) {
	assert.Equal(t, `Request{Echo{content: "hi"}}`, NewEchoRequest("hi").String())
	assert.Equal(t, "Request{AddRequest{a: 1, b: 2}}", NewAddRequest(1, 2).String())
	assert.Equal(t, "Response{AddResponse{result: 3}}", NewAddResponse(3).String())
	assert.Equal(t, "Response{}", Response{}.String())
}
