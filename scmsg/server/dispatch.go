package server

import (
	"fmt"

	"github.com/sjy-dv/scmsg/scmsg/message"
	tcp "github.com/sjy-dv/scmsg/scmsg/server/tcpcore"
)

// Dispatch maps one decoded request to its response. It is pure: every
// request variant yields exactly one response, the empty envelope yields
// tcp.ErrEmptyEnvelope and no response.
func Dispatch(req message.Request) (message.Response, error) {
	switch p := req.Payload.(type) {
	case nil:
		return message.Response{}, tcp.ErrEmptyEnvelope
	case *message.Echo:
		return message.NewEchoResponse(p.Content), nil
	case *message.AddRequest:
		// int32 addition wraps on overflow
		return message.NewAddResponse(p.A + p.B), nil
	default:
		return message.Response{}, fmt.Errorf("%w: unsupported payload %T", tcp.ErrMalformedMessage, p)
	}
}
