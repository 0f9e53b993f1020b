package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/skillhub/internal/logging"
	"github.com/dmitrijs2005/skillhub/internal/server/repositories/repomanager"
)

// Sweeper periodically purges expired refresh tokens. Verify already deletes
// expired tokens it meets; the sweeper catches the ones nobody presents again.
type Sweeper struct {
	repomanager repomanager.RepositoryManager
	interval    time.Duration
	logger      logging.Logger
	now         func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(m repomanager.RepositoryManager, interval time.Duration, l logging.Logger) *Sweeper {
	return &Sweeper{
		repomanager: m,
		interval:    interval,
		logger:      l.With("module", "sweeper"),
		now:         time.Now,
	}
}

// Sweep deletes every refresh token that has expired.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.repomanager.Conn()).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("error sweeping expired refresh tokens: %w", err)
	}
	return n, nil
}

// Start runs Sweep every interval until Close is called or ctx is done.
// A non-positive interval leaves the sweeper idle.
func (s *Sweeper) Start(ctx context.Context) {
	if s.interval <= 0 || s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.Sweep(ctx)
				if err != nil {
					s.logger.Error(ctx, "sweep failed", "error", err)
					continue
				}
				if n > 0 {
					s.logger.Info(ctx, "expired refresh tokens removed", "count", n)
				}
			}
		}
	}()
}

// Close stops the sweeper and waits for it to exit. It is safe to call Close
// even if Start was never called.
func (s *Sweeper) Close() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	return nil
}
