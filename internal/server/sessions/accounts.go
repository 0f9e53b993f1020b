package sessions

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/skillhub/internal/common"
	"github.com/dmitrijs2005/skillhub/internal/dbx"
	"github.com/dmitrijs2005/skillhub/internal/server/auth"
	"github.com/dmitrijs2005/skillhub/internal/server/models"
	"github.com/dmitrijs2005/skillhub/internal/server/repositories/repomanager"
)

// NewAccount is the input for creating a primary or worker account.
type NewAccount struct {
	Username string
	Email    string
	Password string
	Roles    []string
}

func (a *NewAccount) normalize() error {
	a.Username = strings.TrimSpace(a.Username)
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))

	switch {
	case a.Username == "":
		return fmt.Errorf("%w: username is required", common.ErrorValidation)
	case strings.Contains(a.Username, "@"):
		return fmt.Errorf("%w: username must not contain @", common.ErrorValidation)
	case a.Password == "":
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	if addr, err := mail.ParseAddress(a.Email); err != nil || addr.Address != a.Email {
		return fmt.Errorf("%w: invalid email %q", common.ErrorValidation, a.Email)
	}
	return nil
}

// CreatePrimary registers a primary account.
func (s *Service) CreatePrimary(ctx context.Context, in NewAccount) (*models.Principal, error) {
	p, err := s.newPrincipal(in, models.PrimaryRef(s.newToken()))
	if err != nil {
		return nil, err
	}
	if len(p.Roles) == 0 {
		p.Roles = []models.Role{models.RoleOwner}
	}
	return s.createUnique(ctx, p)
}

// EnsurePrimary creates the account unless its username is already taken.
// It is used to seed the first primary account at startup.
func (s *Service) EnsurePrimary(ctx context.Context, in NewAccount) (*models.Principal, bool, error) {
	existing, err := s.repomanager.Primaries(s.repomanager.Conn()).FindByUsername(ctx, strings.TrimSpace(in.Username))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, false, fmt.Errorf("error looking up primary account: %w", err)
	}
	p, err := s.CreatePrimary(ctx, in)
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// CreateWorker registers a worker account owned by the calling primary.
func (s *Service) CreateWorker(ctx context.Context, c Caller, in NewAccount) (*models.Principal, error) {
	if c.Ref.Kind() != models.KindPrimary {
		return nil, common.ErrorForbidden
	}
	if _, err := s.resolver.ResolveActiveByRef(ctx, c.Ref); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	p, err := s.newPrincipal(in, models.WorkerRef(s.newToken()))
	if err != nil {
		return nil, err
	}
	p.OwnerID = c.Ref.ID()
	if len(p.Roles) == 0 {
		p.Roles = []models.Role{models.RoleMember}
	}

	created, err := s.createUnique(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "worker created", "owner", c.Ref.ID(), "worker", created.Ref.ID())
	return created, nil
}

// SetWorkerActive toggles a worker owned by the calling primary. Deactivating
// also revokes the worker's refresh token in the same transaction. Workers of
// other owners are reported as not found.
func (s *Service) SetWorkerActive(ctx context.Context, c Caller, workerID string, active bool) (*models.Principal, error) {
	if c.Ref.Kind() != models.KindPrimary {
		return nil, common.ErrorForbidden
	}

	var out *models.Principal
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		workers := s.repomanager.Workers(tx)

		w, err := workers.FindByID(ctx, workerID)
		if err != nil {
			return err
		}
		if w.OwnerID != c.Ref.ID() {
			return common.ErrorNotFound
		}
		if err := workers.SetActive(ctx, workerID, active); err != nil {
			return err
		}
		if !active {
			if _, err := s.repomanager.RefreshTokens(tx).DeleteByOwner(ctx, w.Ref); err != nil {
				return fmt.Errorf("error revoking worker refresh token: %w", err)
			}
		}
		w.Active = active
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) newPrincipal(in NewAccount, ref models.PrincipalRef) (*models.Principal, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	return &models.Principal{
		Ref:          ref,
		Username:     in.Username,
		Email:        in.Email,
		Roles:        models.RolesFromNames(in.Roles),
		Active:       true,
		PasswordHash: hash,
	}, nil
}

// createUnique refuses identifiers already used by either account kind so
// that new accounts never make login ambiguous.
func (s *Service) createUnique(ctx context.Context, p *models.Principal) (*models.Principal, error) {
	var created *models.Principal
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		for _, kind := range []models.PrincipalKind{models.KindPrimary, models.KindWorker} {
			repo := repomanager.Principals(s.repomanager, tx, kind)
			if err := absent(repo.FindByUsername(ctx, p.Username)); err != nil {
				return err
			}
			if err := absent(repo.FindByEmail(ctx, p.Email)); err != nil {
				return err
			}
		}
		var err error
		created, err = repomanager.Principals(s.repomanager, tx, p.Ref.Kind()).Create(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func absent(_ *models.Principal, err error) error {
	switch {
	case err == nil:
		return common.ErrAlreadyExists
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		return err
	}
}

