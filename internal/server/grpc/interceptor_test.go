package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/dmitrijs2005/skillhub/internal/common"
	"github.com/dmitrijs2005/skillhub/internal/logging"
	pb "github.com/dmitrijs2005/skillhub/internal/proto"
	"github.com/dmitrijs2005/skillhub/internal/server/models"
	"github.com/dmitrijs2005/skillhub/internal/server/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type fakeSessions struct {
	SessionService
	caller  sessions.Caller
	authErr error
	gotTok  string
}

func (f *fakeSessions) Authenticate(_ context.Context, token string) (sessions.Caller, error) {
	f.gotTok = token
	return f.caller, f.authErr
}

func newInterceptorServer(f *fakeSessions) *GRPCServer {
	return NewGRPCServer("", logging.NewJSONLogger(io.Discard, slog.LevelError), f)
}

func TestInterceptor_PublicMethodSkipsAuth(t *testing.T) {
	f := &fakeSessions{}
	s := newInterceptorServer(f)

	called := false
	resp, err := s.accessTokenInterceptor(context.Background(), nil,
		&grpc.UnaryServerInfo{FullMethod: pb.SessionService_Login_FullMethodName},
		func(ctx context.Context, req any) (any, error) {
			called = true
			return "ok", nil
		})

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ok", resp)
	assert.Empty(t, f.gotTok)
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newInterceptorServer(&fakeSessions{})

	_, err := s.accessTokenInterceptor(context.Background(), nil,
		&grpc.UnaryServerInfo{FullMethod: pb.SessionService_WhoAmI_FullMethodName},
		func(ctx context.Context, req any) (any, error) {
			t.Fatal("handler must not run")
			return nil, nil
		})

	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_AttachesCaller(t *testing.T) {
	want := sessions.Caller{Ref: models.WorkerRef("w-1"), Username: "bob", Roles: []string{"member"}}
	f := &fakeSessions{caller: want}
	s := newInterceptorServer(f)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer tok-123"))
	_, err := s.accessTokenInterceptor(ctx, nil,
		&grpc.UnaryServerInfo{FullMethod: pb.SessionService_WhoAmI_FullMethodName},
		func(ctx context.Context, req any) (any, error) {
			got, ok := sessions.CallerFromContext(ctx)
			require.True(t, ok)
			assert.Equal(t, want, got)
			return nil, nil
		})

	require.NoError(t, err)
	assert.Equal(t, "tok-123", f.gotTok)
}

func TestInterceptor_ExpiredToken(t *testing.T) {
	s := newInterceptorServer(&fakeSessions{authErr: common.ErrTokenExpired})

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer old"))
	_, err := s.accessTokenInterceptor(ctx, nil,
		&grpc.UnaryServerInfo{FullMethod: pb.SessionService_WhoAmI_FullMethodName},
		func(ctx context.Context, req any) (any, error) { return nil, nil })

	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestToStatus(t *testing.T) {
	s := newInterceptorServer(&fakeSessions{})

	tests := []struct {
		err  error
		want codes.Code
	}{
		{common.ErrTokenNotFound, codes.NotFound},
		{common.ErrRefreshTokenExpired, codes.Unauthenticated},
		{common.ErrInvalidTokenConfiguration, codes.FailedPrecondition},
		{common.ErrAccountInactive, codes.PermissionDenied},
		{common.ErrorUnauthorized, codes.Unauthenticated},
		{common.ErrorValidation, codes.InvalidArgument},
		{fmt.Errorf("%w: %v", common.ErrSessionConflict, common.ErrAlreadyExists), codes.Aborted},
		{errors.New("boom"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(s.toStatus(context.Background(), tt.err)))
		})
	}
}
