package grpc

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/skillhub/internal/logging"
	pb "github.com/dmitrijs2005/skillhub/internal/proto"
	"github.com/dmitrijs2005/skillhub/internal/server/config"
	"github.com/dmitrijs2005/skillhub/internal/server/models"
	"github.com/dmitrijs2005/skillhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/skillhub/internal/server/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type testEnv struct {
	client pb.SessionServiceClient
	svc    *sessions.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logging.NewJSONLogger(io.Discard, slog.LevelError)
	svc := sessions.NewService(repomanager.NewMemoryRepositoryManager(), &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Minute,
		RefreshTokenValidityDuration: time.Hour,
	}, logger)

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer("bufnet", logger, svc).NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &testEnv{client: pb.NewSessionServiceClient(conn), svc: svc}
}

func (e *testEnv) primary(t *testing.T, username string) *models.Principal {
	t.Helper()
	p, err := e.svc.CreatePrimary(context.Background(), sessions.NewAccount{
		Username: username, Email: username + "@example.com", Password: "pw-" + username,
	})
	require.NoError(t, err)
	return p
}

func withBearer(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func TestLogin_IssuesSession(t *testing.T) {
	env := newTestEnv(t)
	p := env.primary(t, "alice")

	resp, err := env.client.Login(context.Background(), &pb.LoginRequest{Identifier: "alice@example.com", Password: "pw-alice"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.True(t, resp.RefreshTokenExpiresAt.After(resp.AccessTokenExpiresAt))
	require.NotNil(t, resp.Principal)
	assert.Equal(t, p.Ref.ID(), resp.Principal.ID)
	assert.Equal(t, "primary", resp.Principal.Kind)
}

func TestLogin_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.primary(t, "alice")

	_, err := env.client.Login(context.Background(), &pb.LoginRequest{Identifier: "alice", Password: "wrong"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = env.client.Login(context.Background(), &pb.LoginRequest{Identifier: "nobody", Password: "x"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = env.client.Login(context.Background(), &pb.LoginRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRegenerate_RotatesToken(t *testing.T) {
	env := newTestEnv(t)
	env.primary(t, "alice")
	ctx := context.Background()

	first, err := env.client.Login(ctx, &pb.LoginRequest{Identifier: "alice", Password: "pw-alice"})
	require.NoError(t, err)

	second, err := env.client.Regenerate(ctx, &pb.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = env.client.Regenerate(ctx, &pb.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = env.client.Regenerate(ctx, &pb.RefreshTokenRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestVerifyAndInvalidate(t *testing.T) {
	env := newTestEnv(t)
	p := env.primary(t, "alice")
	ctx := context.Background()

	login, err := env.client.Login(ctx, &pb.LoginRequest{Identifier: "alice", Password: "pw-alice"})
	require.NoError(t, err)

	v, err := env.client.Verify(ctx, &pb.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.Equal(t, login.RefreshToken, v.Token)
	assert.Equal(t, "alice", v.Username)
	assert.Equal(t, "primary", v.PrincipalKind)
	assert.Equal(t, p.Ref.ID(), v.PrincipalID)

	inv, err := env.client.Invalidate(ctx, &pb.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, inv.Message)

	_, err = env.client.Verify(ctx, &pb.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = env.client.Invalidate(ctx, &pb.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestWhoAmI(t *testing.T) {
	env := newTestEnv(t)
	env.primary(t, "alice")
	ctx := context.Background()

	login, err := env.client.Login(ctx, &pb.LoginRequest{Identifier: "alice", Password: "pw-alice"})
	require.NoError(t, err)

	me, err := env.client.WhoAmI(withBearer(ctx, login.AccessToken), &pb.WhoAmIRequest{})
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, []string{"owner"}, me.Roles)

	_, err = env.client.WhoAmI(ctx, &pb.WhoAmIRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = env.client.WhoAmI(withBearer(ctx, "garbage"), &pb.WhoAmIRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
