package rpc

import (
	"context"
	"errors"

	"github.com/sjy-dv/scmsg/scmsg/pkg/log"
	tcp "github.com/sjy-dv/scmsg/scmsg/server/tcpcore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (internal *InternalRpcServer) Ping(ctx context.Context, in *emptypb.Empty) (*emptypb.Empty, error) {
	log.Debug("SCMSG admin ping")
	return &emptypb.Empty{}, nil
}

func (internal *InternalRpcServer) ListEndpoints(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
	eps := internal.registry.Endpoints()
	statuses := make([]EndpointStatus, 0, len(eps))
	for _, ep := range eps {
		statuses = append(statuses, StatusOf(ep))
	}
	out, err := EndpointsToStruct(statuses)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode endpoints: %v", err)
	}
	return out, nil
}

func (internal *InternalRpcServer) Release(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	addr := in.GetValue()
	log.Info("Trying to Release Endpoint ", addr)
	if err := internal.registry.Release(addr); err != nil {
		if errors.Is(err, tcp.ErrNotRegistered) {
			return nil, status.Error(codes.NotFound, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &emptypb.Empty{}, nil
}
