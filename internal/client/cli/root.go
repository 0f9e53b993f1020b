// Package cli implements the skillhub command-line client: cobra commands
// that log in, rotate, inspect and end a session over gRPC.
package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/skillhub/internal/client/client"
	"github.com/dmitrijs2005/skillhub/internal/client/config"
	"github.com/dmitrijs2005/skillhub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/skillhub/internal/client/services"
	pb "github.com/dmitrijs2005/skillhub/internal/proto"
	"github.com/spf13/cobra"
)

// Session is what the commands need from the session service.
type Session interface {
	Login(ctx context.Context, identifier, password string) (*pb.SessionResponse, error)
	Refresh(ctx context.Context) (*pb.SessionResponse, error)
	Logout(ctx context.Context) error
	Verify(ctx context.Context) (*pb.VerifyResponse, error)
	WhoAmI(ctx context.Context) (*pb.Principal, error)
}

// Opener builds a Session for cfg. The returned func releases it.
type Opener func(ctx context.Context, cfg *config.Config) (Session, func() error, error)

// OpenSession connects to the server and restores the saved session from
// the local database.
func OpenSession(ctx context.Context, cfg *config.Config) (Session, func() error, error) {
	db, err := client.OpenSessionDB(ctx, cfg.SessionDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session database: %w", err)
	}

	c, err := client.NewSessionClient(cfg.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create grpc client: %w", err)
	}

	svc := services.NewSessionService(c, metadata.NewSQLiteRepository(db))
	if err := svc.Restore(ctx); err != nil {
		_ = c.Close()
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to restore session: %w", err)
	}

	closeFn := func() error {
		_ = c.Close()
		return db.Close()
	}
	return svc, closeFn, nil
}

// NewRootCmd builds the skillhub command tree. Flags default to the values
// already in cfg and override them when given.
func NewRootCmd(cfg *config.Config, open Opener) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "skillhub",
		Short:         "skillhub session client",
		Long:          `skillhub logs primary and worker accounts in and manages their refresh token.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to JSON config file")
	root.PersistentFlags().StringVarP(&cfg.ServerEndpointAddr, "addr", "a", cfg.ServerEndpointAddr, "address and port of the session gRPC endpoint")
	root.PersistentFlags().StringVar(&cfg.SessionDBPath, "session-db", cfg.SessionDBPath, "path to the local session database")
	root.PersistentFlags().DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-command request timeout")

	cmds := &commands{cfg: cfg, open: open}
	root.AddCommand(
		cmds.loginCmd(),
		cmds.refreshCmd(),
		cmds.logoutCmd(),
		cmds.verifyCmd(),
		cmds.whoamiCmd(),
	)
	return root
}
