package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/skillhub/internal/common"
	pb "github.com/dmitrijs2005/skillhub/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Tokens is the client's view of its current session.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.SessionServiceClient

	mu     sync.Mutex
	tokens Tokens
}

func NewSessionClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.initGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewSessionServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Tokens() Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

func (s *GRPCClient) SetTokens(t Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = t
}

func (s *GRPCClient) setFromResponse(resp *pb.SessionResponse) {
	s.SetTokens(Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken})
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, common.BearerPrefix+token)
	return metadata.NewOutgoingContext(ctx, md)
}

// accessTokenInterceptor attaches the access token to authenticated calls
// and, when the server reports it expired, regenerates the pair once and
// retries.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if method != pb.SessionService_WhoAmI_FullMethodName {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	tokens := s.Tokens()
	err := invoker(withAccessToken(ctx, tokens.AccessToken), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if tokens.RefreshToken == "" {
		return err
	}

	resp, err := s.client.Regenerate(ctx, &pb.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	if err != nil {
		return err
	}
	s.setFromResponse(resp)

	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

func (s *GRPCClient) Login(ctx context.Context, identifier, password string) (*pb.SessionResponse, error) {
	resp, err := s.client.Login(ctx, &pb.LoginRequest{Identifier: identifier, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.setFromResponse(resp)
	return resp, nil
}

func (s *GRPCClient) Regenerate(ctx context.Context) (*pb.SessionResponse, error) {
	rt := s.Tokens().RefreshToken
	if rt == "" {
		return nil, ErrNotLoggedIn
	}

	resp, err := s.client.Regenerate(ctx, &pb.RefreshTokenRequest{RefreshToken: rt})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.setFromResponse(resp)
	return resp, nil
}

func (s *GRPCClient) Invalidate(ctx context.Context) error {
	rt := s.Tokens().RefreshToken
	if rt == "" {
		return ErrNotLoggedIn
	}

	if _, err := s.client.Invalidate(ctx, &pb.RefreshTokenRequest{RefreshToken: rt}); err != nil {
		return s.mapError(err)
	}
	s.SetTokens(Tokens{})
	return nil
}

func (s *GRPCClient) Verify(ctx context.Context) (*pb.VerifyResponse, error) {
	rt := s.Tokens().RefreshToken
	if rt == "" {
		return nil, ErrNotLoggedIn
	}

	resp, err := s.client.Verify(ctx, &pb.RefreshTokenRequest{RefreshToken: rt})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (*pb.Principal, error) {
	if s.Tokens().AccessToken == "" {
		return nil, ErrNotLoggedIn
	}

	resp, err := s.client.WhoAmI(ctx, &pb.WhoAmIRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.NotFound:
		return ErrSessionNotFound
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return ErrInactive
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
