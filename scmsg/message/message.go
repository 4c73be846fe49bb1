// Package message defines the request and response envelopes exchanged
// between clients and endpoints, and their protobuf wire encoding
// (see message.proto).
package message

import "fmt"

// Request is a ClientMessage. A nil Payload is the empty envelope.
type Request struct {
	Payload RequestPayload
}

// Response is a ServerMessage. A nil Payload is the empty envelope.
type Response struct {
	Payload ResponsePayload
}

// RequestPayload is implemented by *Echo and *AddRequest only.
type RequestPayload interface {
	isRequestPayload()
}

// ResponsePayload is implemented by *Echo and *AddResponse only.
type ResponsePayload interface {
	isResponsePayload()
}

type Echo struct {
	Content string
}

type AddRequest struct {
	A int32
	B int32
}

type AddResponse struct {
	Result int32
}

func (*Echo) isRequestPayload() {}
func (*Echo) isResponsePayload() {}
func (*AddRequest) isRequestPayload() {}
func (*AddResponse) isResponsePayload() {}

func NewEchoRequest(content string) Request {
	return Request{Payload: &Echo{Content: content}}
}

func NewAddRequest(a, b int32) Request {
	return Request{Payload: &AddRequest{A: a, B: b}}
}

func NewEchoResponse(content string) Response {
	return Response{Payload: &Echo{Content: content}}
}

func NewAddResponse(result int32) Response {
	return Response{Payload: &AddResponse{Result: result}}
}

// Empty reports whether the envelope carries no variant.
func (r Request) Empty() bool {
	return r.Payload == nil
}

func (r Response) Empty() bool {
	return r.Payload == nil
}

func (r Request) String() string {
	switch p := r.Payload.(type) {
	case nil:
		return "Request{}"
	case *Echo:
		return fmt.Sprintf("Request{Echo{content: %q}}", p.Content)
	case *AddRequest:
		return fmt.Sprintf("Request{AddRequest{a: %d, b: %d}}", p.A, p.B)
	default:
		return fmt.Sprintf("Request{%T}", p)
	}
}

func (r Response) String() string {
	switch p := r.Payload.(type) {
	case nil:
		return "Response{}"
	case *Echo:
		return fmt.Sprintf("Response{Echo{content: %q}}", p.Content)
	case *AddResponse:
		return fmt.Sprintf("Response{AddResponse{result: %d}}", p.Result)
	default:
		return fmt.Sprintf("Response{%T}", p)
	}
}
