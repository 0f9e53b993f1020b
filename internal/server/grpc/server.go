// Package grpc serves the session service over gRPC with the protobuf
// messages from internal/proto.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/skillhub/internal/logging"
	pb "github.com/dmitrijs2005/skillhub/internal/proto"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	pb.UnimplementedSessionServiceServer
	address  string
	sessions SessionService
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, s SessionService) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		sessions: s,
	}
}

// NewServer builds a grpc.Server with the session service and its
// interceptors registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	srv := grpc.NewServer(opts...)
	pb.RegisterSessionServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
