package grpc

import (
	"context"
	"strings"

	pb "github.com/dmitrijs2005/skillhub/internal/proto"
	"github.com/dmitrijs2005/skillhub/internal/server/models"
	"github.com/dmitrijs2005/skillhub/internal/server/sessions"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SessionService is what the gRPC handlers need from the session layer.
type SessionService interface {
	Login(ctx context.Context, identifier, password string) (*sessions.TokenPair, *models.Principal, error)
	Refresh(ctx context.Context, token string) (*sessions.TokenPair, *models.Principal, error)
	Invalidate(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (*models.RefreshToken, error)
	Authenticate(ctx context.Context, accessToken string) (sessions.Caller, error)
	CurrentPrincipal(ctx context.Context, c sessions.Caller) (*models.Principal, error)
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.SessionResponse, error) {
	if strings.TrimSpace(req.Identifier) == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "identifier and password are required")
	}

	pair, p, err := s.sessions.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return sessionResponse(pair, p), nil
}

func (s *GRPCServer) Regenerate(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.SessionResponse, error) {
	if req.RefreshToken == "" {
		return nil, status.Error(codes.InvalidArgument, "refresh token is required")
	}

	pair, p, err := s.sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return sessionResponse(pair, p), nil
}

func (s *GRPCServer) Invalidate(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.InvalidateResponse, error) {
	if req.RefreshToken == "" {
		return nil, status.Error(codes.InvalidArgument, "refresh token is required")
	}

	if err := s.sessions.Invalidate(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.InvalidateResponse{Message: "refresh token invalidated"}, nil
}

func (s *GRPCServer) Verify(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.VerifyResponse, error) {
	if req.RefreshToken == "" {
		return nil, status.Error(codes.InvalidArgument, "refresh token is required")
	}

	rt, err := s.sessions.Verify(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.VerifyResponse{
		Token:         rt.Token,
		ExpiryDate:    rt.ExpiryDate,
		Username:      rt.Username,
		Email:         rt.Email,
		PrincipalKind: string(rt.Owner.Kind()),
		PrincipalID:   rt.Owner.ID(),
	}, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *pb.WhoAmIRequest) (*pb.Principal, error) {
	c, ok := sessions.CallerFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	p, err := s.sessions.CurrentPrincipal(ctx, c)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return principal(p), nil
}

func sessionResponse(pair *sessions.TokenPair, p *models.Principal) *pb.SessionResponse {
	return &pb.SessionResponse{
		AccessToken:           pair.AccessToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		Principal:             principal(p),
	}
}

func principal(p *models.Principal) *pb.Principal {
	return &pb.Principal{
		ID:       p.Ref.ID(),
		Kind:     string(p.Ref.Kind()),
		Username: p.Username,
		Email:    p.Email,
		Roles:    p.RoleNames(),
		Active:   p.Active,
		OwnerID:  p.OwnerID,
	}
}
