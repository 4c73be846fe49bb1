package rpc

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"time"

	"github.com/sjy-dv/scmsg/scmsg/pkg/log"
	"github.com/sjy-dv/scmsg/scmsg/server"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

type InternalRpcServer struct {
	registry *server.Registry
}

var _ AdminServer = &InternalRpcServer{}

func NewInternalRpcServer(reg *server.Registry) *InternalRpcServer {
	return &InternalRpcServer{registry: reg}
}

// NewGrpcServer builds a grpc.Server exposing the Admin service for reg.
func NewGrpcServer(reg *server.Registry) *grpc.Server {
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(recoverInterceptor, logInterceptor))
	RegisterAdminServer(grpcServer, NewInternalRpcServer(reg))
	reflection.Register(grpcServer)
	return grpcServer
}

// ServeRpc listens on addr and serves the Admin service in the background.
// The returned server is stopped by the caller.
func ServeRpc(addr string, reg *server.Registry) (*grpc.Server, net.Addr, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Warn(fmt.Sprintf("FAILED START LISTENING : %v", err))
		return nil, nil, err
	}
	grpcServer := NewGrpcServer(reg)
	log.Info("SCMSG Register Admin gRPC SERVER ", lis.Addr())
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("Admin gRPC Server stopped: ", err)
		}
	}()
	return grpcServer, lis.Addr(), nil
}

func recoverInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(fmt.Sprintf("RPC Server Error %v:%s", r, debug.Stack()))
			err = status.Errorf(codes.Internal, "panic: %v", r)
		}
	}()
	return handler(ctx, req)
}

func logInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if err != nil {
		log.Warnf("%s failed in %v:[%v]", info.FullMethod, time.Since(start), err)
	} else {
		log.Debugf("%s done in %v", info.FullMethod, time.Since(start))
	}
	return resp, err
}
