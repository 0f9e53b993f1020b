// Package principals stores primary and worker accounts. Each kind lives in
// its own table; a Repository is bound to exactly one of them.
package principals

import (
	"context"

	"github.com/dmitrijs2005/skillhub/internal/server/models"
)

// Repository is the principal store for one account kind.
// Lookups return common.ErrorNotFound when nothing matches.
type Repository interface {
	Kind() models.PrincipalKind
	FindByID(ctx context.Context, id string) (*models.Principal, error)
	FindByUsername(ctx context.Context, username string) (*models.Principal, error)
	FindByEmail(ctx context.Context, email string) (*models.Principal, error)
	// Create inserts p. p.Ref must already carry the id and the repository's kind.
	// Taken usernames or emails yield common.ErrAlreadyExists.
	Create(ctx context.Context, p *models.Principal) (*models.Principal, error)
	SetActive(ctx context.Context, id string, active bool) error
}
