// Package principals resolves login identifiers and principal references to
// accounts across the primary and worker tables.
package principals

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/skillhub/internal/common"
	"github.com/dmitrijs2005/skillhub/internal/dbx"
	"github.com/dmitrijs2005/skillhub/internal/logging"
	"github.com/dmitrijs2005/skillhub/internal/server/models"
	"github.com/dmitrijs2005/skillhub/internal/server/repositories/repomanager"
)

// Resolver looks principals up in both account tables.
type Resolver struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewResolver(m repomanager.RepositoryManager, l logging.Logger) *Resolver {
	return &Resolver{repomanager: m, logger: l.With("module", "principals")}
}

// ResolveByIdentifier finds the account named by identifier, read as an email
// when it contains "@" and as a username otherwise. Primary accounts are
// searched first and win when both tables match.
func (r *Resolver) ResolveByIdentifier(ctx context.Context, identifier string) (*models.Principal, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, common.ErrorNotFound
	}
	byEmail := strings.Contains(identifier, "@")

	var found []*models.Principal
	for _, kind := range []models.PrincipalKind{models.KindPrimary, models.KindWorker} {
		repo := repomanager.Principals(r.repomanager, r.repomanager.Conn(), kind)

		var (
			p   *models.Principal
			err error
		)
		if byEmail {
			p, err = repo.FindByEmail(ctx, identifier)
		} else {
			p, err = repo.FindByUsername(ctx, identifier)
		}
		if errors.Is(err, common.ErrorNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("looking up %s account: %w", kind, err)
		}
		found = append(found, p)
	}

	switch len(found) {
	case 0:
		return nil, common.ErrorNotFound
	case 1:
		return found[0], nil
	default:
		r.logger.Warn(ctx, "identifier matches both account kinds, using primary",
			"primary", found[0].Ref.ID(), "worker", found[1].Ref.ID())
		return found[0], nil
	}
}

// ResolveByRef loads the principal ref points at.
func (r *Resolver) ResolveByRef(ctx context.Context, ref models.PrincipalRef) (*models.Principal, error) {
	return r.ResolveByRefTx(ctx, r.repomanager.Conn(), ref)
}

// ResolveByRefTx is ResolveByRef on an explicit handle, for use inside a transaction.
func (r *Resolver) ResolveByRefTx(ctx context.Context, db dbx.DBTX, ref models.PrincipalRef) (*models.Principal, error) {
	if ref.IsZero() {
		return nil, common.ErrorNotFound
	}
	p, err := repomanager.Principals(r.repomanager, db, ref.Kind()).FindByID(ctx, ref.ID())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("looking up %s: %w", ref, err)
	}
	return p, nil
}

// ResolveActiveByRef is ResolveByRef plus the active gate.
func (r *Resolver) ResolveActiveByRef(ctx context.Context, ref models.PrincipalRef) (*models.Principal, error) {
	p, err := r.ResolveByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := RequireActive(p); err != nil {
		return nil, err
	}
	return p, nil
}

// RequireActive returns common.ErrAccountInactive for deactivated accounts.
func RequireActive(p *models.Principal) error {
	if !p.Active {
		return common.ErrAccountInactive
	}
	return nil
}
