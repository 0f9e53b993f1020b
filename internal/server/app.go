// Package server wires storage, the session service and its transports
// together and runs them until the process is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/skillhub/internal/logging"
	"github.com/dmitrijs2005/skillhub/internal/server/config"
	"github.com/dmitrijs2005/skillhub/internal/server/httpapi"
	"github.com/dmitrijs2005/skillhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/skillhub/internal/server/sessions"

	gs "github.com/dmitrijs2005/skillhub/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	sessions    *sessions.Service
	sweeper     *sessions.Sweeper
}

// openPostgres is a test seam.
var openPostgres = repomanager.OpenPostgres

func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(w, level)

	rm, err := newRepositoryManager(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	svc := sessions.NewService(rm, c, logger)

	app := &App{
		config:      c,
		logger:      logger,
		repomanager: rm,
		sessions:    svc,
		sweeper:     sessions.NewSweeper(rm, c.SweepInterval, logger),
	}

	if err := app.bootstrap(ctx); err != nil {
		_ = rm.Close()
		return nil, err
	}

	return app, nil
}

func newRepositoryManager(ctx context.Context, c *config.Config, l logging.Logger) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		l.Warn(ctx, "no database configured, sessions are kept in memory")
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	db, err := openPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return migrated(ctx, db)
}

func migrated(ctx context.Context, db *sql.DB) (repomanager.RepositoryManager, error) {
	rm := repomanager.NewPostgresRepositoryManager(db)
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return rm, nil
}

// bootstrap seeds the configured primary account if it does not exist yet.
func (app *App) bootstrap(ctx context.Context) error {
	b := app.config.Bootstrap
	if b == nil {
		return nil
	}

	p, created, err := app.sessions.EnsurePrimary(ctx, sessions.NewAccount{
		Username: b.Username,
		Email:    b.Email,
		Password: b.Password,
		Roles:    b.Roles,
	})
	if err != nil {
		return fmt.Errorf("bootstrap primary account: %w", err)
	}
	if created {
		app.logger.Info(ctx, "bootstrap primary account created", "principal_id", p.Ref.ID(), "username", p.Username)
	}
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.sessions)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.router(), app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) router() http.Handler {
	corsOpts := httpapi.CORSOptions(app.config.AllowedOrigins)
	return httpapi.NewRouter(httpapi.NewHandler(app.sessions, app.logger), &corsOpts)
}

// Run serves HTTP and gRPC until ctx is cancelled, a signal arrives or a
// server fails, then releases storage.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)
	app.sweeper.Start(ctx)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.sweeper.Close(); err != nil {
		app.logger.Error(ctx, "sweeper close error", "error", err)
	}
	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "storage close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
