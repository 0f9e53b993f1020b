package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/skillhub/internal/common"
	pb "github.com/dmitrijs2005/skillhub/internal/proto"
	"github.com/dmitrijs2005/skillhub/internal/server/sessions"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// authenticatedMethods need a bearer access token in the authorization metadata.
var authenticatedMethods = map[string]bool{
	pb.SessionService_WhoAmI_FullMethodName: true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !authenticatedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
			accessToken = strings.TrimSpace(strings.TrimPrefix(values[0], common.BearerPrefix))
		}
	}
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	c, err := s.sessions.Authenticate(ctx, accessToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return handler(sessions.WithCaller(ctx, c), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Info(ctx, "grpc request",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
