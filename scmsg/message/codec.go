package message

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// field numbers, see message.proto
const (
	envelopeEcho protowire.Number = 1
	envelopeAdd  protowire.Number = 2

	echoContent protowire.Number = 1
	addA        protowire.Number = 1
	addB        protowire.Number = 2
	addResult   protowire.Number = 1
)

var (
	ErrInvalidUTF8   = errors.New("message:string field is not valid utf-8")
	ErrWireType      = errors.New("message:unexpected wire type")
	errTruncatedData = errors.New("message:truncated")
)

// Marshal encodes r as a ClientMessage. The empty envelope encodes to zero bytes.
func (r Request) Marshal() []byte {
	var b []byte
	switch p := r.Payload.(type) {
	case *Echo:
		b = appendEmbedded(b, envelopeEcho, appendEcho(nil, p))
	case *AddRequest:
		var inner []byte
		inner = appendInt32(inner, addA, p.A)
		inner = appendInt32(inner, addB, p.B)
		b = appendEmbedded(b, envelopeAdd, inner)
	}
	return b
}

// Marshal encodes r as a ServerMessage. The empty envelope encodes to zero bytes.
func (r Response) Marshal() []byte {
	var b []byte
	switch p := r.Payload.(type) {
	case *Echo:
		b = appendEmbedded(b, envelopeEcho, appendEcho(nil, p))
	case *AddResponse:
		b = appendEmbedded(b, envelopeAdd, appendInt32(nil, addResult, p.Result))
	}
	return b
}

// UnmarshalRequest decodes a ClientMessage. Unknown fields are skipped and
// the last payload field on the wire wins.
func UnmarshalRequest(data []byte) (Request, error) {
	var req Request
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case envelopeEcho:
			inner, n, err := consumeEmbedded(typ, b)
			if err != nil {
				return 0, err
			}
			echo, err := decodeEcho(inner)
			if err != nil {
				return 0, fmt.Errorf("echo_message: %w", err)
			}
			req.Payload = echo
			return n, nil
		case envelopeAdd:
			inner, n, err := consumeEmbedded(typ, b)
			if err != nil {
				return 0, err
			}
			add, err := decodeAddRequest(inner)
			if err != nil {
				return 0, fmt.Errorf("add_request: %w", err)
			}
			req.Payload = add
			return n, nil
		}
		return skipField(num, typ, b)
	})
	if err != nil {
		return Request{}, err
	}
	return req, nil
}

// UnmarshalResponse decodes a ServerMessage with the same rules as UnmarshalRequest.
func UnmarshalResponse(data []byte) (Response, error) {
	var resp Response
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case envelopeEcho:
			inner, n, err := consumeEmbedded(typ, b)
			if err != nil {
				return 0, err
			}
			echo, err := decodeEcho(inner)
			if err != nil {
				return 0, fmt.Errorf("echo_message: %w", err)
			}
			resp.Payload = echo
			return n, nil
		case envelopeAdd:
			inner, n, err := consumeEmbedded(typ, b)
			if err != nil {
				return 0, err
			}
			add, err := decodeAddResponse(inner)
			if err != nil {
				return 0, fmt.Errorf("add_response: %w", err)
			}
			resp.Payload = add
			return n, nil
		}
		return skipField(num, typ, b)
	})
	if err != nil {
		return Response{}, err
	}
	return resp, nil
}

func appendEmbedded(b []byte, num protowire.Number, inner []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, inner)
}

func appendEcho(b []byte, e *Echo) []byte {
	if e.Content == "" {
		return b
	}
	b = protowire.AppendTag(b, echoContent, protowire.BytesType)
	return protowire.AppendString(b, e.Content)
}

// proto3 int32: zero is omitted, negatives are sign extended to ten bytes.
func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

// walkFields calls fn for every field in data. fn consumes the field value
// starting at b and returns the number of bytes it used.
func walkFields(data []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		m, err := fn(num, typ, data)
		if err != nil {
			return err
		}
		if m > len(data) {
			return errTruncatedData
		}
		data = data[m:]
	}
	return nil
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return n, nil
}

func consumeEmbedded(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, ErrWireType
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeInt32(typ protowire.Type, b []byte) (int32, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, ErrWireType
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return int32(v), n, nil
}

func decodeEcho(data []byte) (*Echo, error) {
	e := &Echo{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != echoContent {
			return skipField(num, typ, b)
		}
		if typ != protowire.BytesType {
			return 0, ErrWireType
		}
		s, n := protowire.ConsumeString(b)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		if !utf8.ValidString(s) {
			return 0, ErrInvalidUTF8
		}
		e.Content = s
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func decodeAddRequest(data []byte) (*AddRequest, error) {
	a := &AddRequest{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		var (
			v   int32
			n   int
			err error
		)
		switch num {
		case addA:
			v, n, err = consumeInt32(typ, b)
			a.A = v
		case addB:
			v, n, err = consumeInt32(typ, b)
			a.B = v
		default:
			return skipField(num, typ, b)
		}
		return n, err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func decodeAddResponse(data []byte) (*AddResponse, error) {
	r := &AddResponse{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != addResult {
			return skipField(num, typ, b)
		}
		v, n, err := consumeInt32(typ, b)
		r.Result = v
		return n, err
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}
