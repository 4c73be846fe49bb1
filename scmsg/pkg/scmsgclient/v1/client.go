package v1

import (
	"context"

	"github.com/sjy-dv/scmsg/scmsg/server/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Conn struct {
	grpcclient *grpc.ClientConn
}

// Creates a connection to the scmsg admin service. address format host:port example 127.0.0.1:50051
func NewScmsgConn(addr string, opts ...grpc.DialOption) (*Conn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.Dial(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &Conn{grpcclient: conn}, nil
}

func (c *Conn) wrap() rpc.AdminClient {
	return rpc.NewAdminClient(c.grpcclient)
}

// Ping-Pong connection, when the connection is established returns nil. but when the connection is closed returns error
func (c *Conn) Ping(ctx context.Context) error {
	_, err := c.wrap().Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return err
	}
	return nil
}

// ListEndpoints returns every registered endpoint ordered by address.
func (c *Conn) ListEndpoints(ctx context.Context) ([]rpc.EndpointStatus, error) {
	out, err := c.wrap().ListEndpoints(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	return rpc.EndpointsFromStruct(out), nil
}

// Release drops one client claim on addr. An unknown address returns a NotFound status error.
func (c *Conn) Release(ctx context.Context, addr string) error {
	_, err := c.wrap().Release(ctx, wrapperspb.String(addr))
	return err
}

func (c *Conn) Close() error {
	return c.grpcclient.Close()
}
