// Package sessions implements the session lifecycle: issuing access and
// refresh tokens at login, verifying and rotating refresh tokens, and
// revoking them.
//
// Every principal owns at most one refresh token. Issue replaces it inside a
// single transaction, and the refresh_tokens table backs this with unique
// owner columns.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/skillhub/internal/common"
	"github.com/dmitrijs2005/skillhub/internal/dbx"
	"github.com/dmitrijs2005/skillhub/internal/logging"
	"github.com/dmitrijs2005/skillhub/internal/server/auth"
	"github.com/dmitrijs2005/skillhub/internal/server/config"
	"github.com/dmitrijs2005/skillhub/internal/server/models"
	"github.com/dmitrijs2005/skillhub/internal/server/principals"
	"github.com/dmitrijs2005/skillhub/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

// Service is the session lifecycle manager.
type Service struct {
	repomanager                  repomanager.RepositoryManager
	resolver                     *principals.Resolver
	codec                        *auth.Codec
	refreshTokenValidityDuration time.Duration
	logger                       logging.Logger

	now      func() time.Time
	newToken func() string
}

// NewService constructs a Service using repositories and server config.
func NewService(m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *Service {
	l = l.With("module", "sessions")
	return &Service{
		repomanager:                  m,
		resolver:                     principals.NewResolver(m, l),
		codec:                        auth.NewCodec([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration),
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		logger:                       l,
		now:                          time.Now,
		newToken:                     uuid.NewString,
	}
}

// Resolver exposes the principal resolver the service uses.
func (s *Service) Resolver() *principals.Resolver { return s.resolver }

// Issue replaces whatever refresh token p holds with a fresh one and mints
// an access token. The delete and insert commit together or not at all.
func (s *Service) Issue(ctx context.Context, p *models.Principal) (*TokenPair, error) {
	return s.issue(ctx, p, "")
}

// issue optionally consumes a specific refresh token in the same transaction.
// If that token is already gone the whole rotation fails with
// common.ErrTokenNotFound, so a token is never rotated twice. The owner is
// reloaded inside the transaction and must still be active.
func (s *Service) issue(ctx context.Context, p *models.Principal, consumed string) (*TokenPair, error) {
	if p == nil || p.Ref.IsZero() {
		return nil, fmt.Errorf("issue: principal without reference")
	}

	access, accessExp, err := s.codec.Sign(auth.Identity{Ref: p.Ref, Username: p.Username, Roles: p.RoleNames()})
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	rec := models.NewRefreshTokenRecord(s.newToken(), s.now().Add(s.refreshTokenValidityDuration), p)

	// A concurrent login for the same owner can commit its row between our
	// delete and insert; the unique owner column then rejects ours once.
	for attempt := 1; ; attempt++ {
		err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
			return s.replaceToken(ctx, tx, p.Ref, rec, consumed)
		})
		if !errors.Is(err, common.ErrAlreadyExists) {
			break
		}
		if attempt == maxIssueAttempts {
			s.logger.Warn(ctx, "refresh token insert kept conflicting", "principal", p.Ref.String())
			return nil, fmt.Errorf("%w: %v", common.ErrSessionConflict, err)
		}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "refresh token issued", "principal", p.Ref.String())
	return &TokenPair{
		AccessToken:           access,
		AccessTokenExpiresAt:  accessExp,
		RefreshToken:          rec.Token,
		RefreshTokenExpiresAt: rec.ExpiryDate,
	}, nil
}

const maxIssueAttempts = 2

func (s *Service) replaceToken(ctx context.Context, tx dbx.DBTX, ref models.PrincipalRef, rec *models.RefreshTokenRecord, consumed string) error {
	owner, err := s.resolver.ResolveByRefTx(ctx, tx, ref)
	if err != nil {
		return fmt.Errorf("error loading token owner: %w", err)
	}
	if err := principals.RequireActive(owner); err != nil {
		return err
	}

	repo := s.repomanager.RefreshTokens(tx)
	if consumed != "" {
		if err := repo.Delete(ctx, consumed); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrTokenNotFound
			}
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
	}
	if _, err := repo.DeleteByOwner(ctx, owner.Ref); err != nil {
		return fmt.Errorf("error revoking previous refresh tokens: %w", err)
	}
	if err := repo.Create(ctx, rec); err != nil {
		return fmt.Errorf("error storing refresh token: %w", err)
	}
	return nil
}

// Verify returns the stored token if it exists, has not expired and names
// exactly one owner. An expired token is deleted on the way out.
func (s *Service) Verify(ctx context.Context, token string) (*models.RefreshToken, error) {
	repo := s.repomanager.RefreshTokens(s.repomanager.Conn())

	rec, err := repo.Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrTokenNotFound
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if rec.Expired(s.now()) {
		if err := repo.Delete(ctx, token); err != nil && !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("error deleting expired refresh token: %w", err)
		}
		return nil, common.ErrRefreshTokenExpired
	}

	verified, err := rec.Validate()
	if err != nil {
		s.logger.Error(ctx, "refresh token has invalid ownership",
			"primary_set", rec.PrimaryID != nil, "worker_set", rec.WorkerID != nil)
		return nil, err
	}
	return verified, nil
}

// Refresh verifies token, re-checks that its owner is still active and
// rotates it. The returned principal is the freshly loaded owner.
func (s *Service) Refresh(ctx context.Context, token string) (*TokenPair, *models.Principal, error) {
	rt, err := s.Verify(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	p, err := s.resolver.ResolveActiveByRef(ctx, rt.Owner)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issue(ctx, p, token)
	if err != nil {
		return nil, nil, err
	}
	return pair, p, nil
}

// Invalidate revokes token. A second call for the same token fails with
// common.ErrTokenNotFound.
func (s *Service) Invalidate(ctx context.Context, token string) error {
	err := s.repomanager.RefreshTokens(s.repomanager.Conn()).Delete(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrTokenNotFound
		}
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// Login checks identifier and password and starts a session.
// Unknown identifiers and wrong passwords both yield common.ErrorUnauthorized.
func (s *Service) Login(ctx context.Context, identifier, password string) (*TokenPair, *models.Principal, error) {
	p, err := s.resolver.ResolveByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.BurnPasswordCheck(password)
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, fmt.Errorf("error resolving principal: %w", err)
	}

	if !auth.CheckPassword(p.PasswordHash, password) {
		return nil, nil, common.ErrorUnauthorized
	}
	if err := principals.RequireActive(p); err != nil {
		return nil, nil, err
	}

	pair, err := s.Issue(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info(ctx, "login", "principal", p.Ref.String())
	return pair, p, nil
}

// Authenticate turns a bearer access token into a Caller.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (Caller, error) {
	id, err := s.codec.Parse(accessToken)
	if err != nil {
		return Caller{}, err
	}
	return Caller{Ref: id.Ref, Username: id.Username, Roles: id.Roles}, nil
}

// CurrentPrincipal loads the account behind c.
func (s *Service) CurrentPrincipal(ctx context.Context, c Caller) (*models.Principal, error) {
	if c.IsZero() {
		return nil, common.ErrorUnauthorized
	}
	return s.resolver.ResolveByRef(ctx, c.Ref)
}
