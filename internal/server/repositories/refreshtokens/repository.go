// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/skillhub/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
//
// Implementations must keep at most one row per owner: Create fails with
// common.ErrAlreadyExists when the owner (or the token string) is taken.
type Repository interface {
	// Create stores a new refresh token row.
	Create(ctx context.Context, rec *models.RefreshTokenRecord) error

	// Find looks up a refresh token by its opaque token string.
	// It returns common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshTokenRecord, error)

	// Delete removes a refresh token by its token string.
	// It returns common.ErrorNotFound when nothing was deleted.
	Delete(ctx context.Context, token string) error

	// DeleteByOwner removes every token owned by ref and reports how many went.
	DeleteByOwner(ctx context.Context, ref models.PrincipalRef) (int64, error)

	// DeleteExpired purges tokens whose expiry is before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
