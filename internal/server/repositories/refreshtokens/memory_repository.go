package refreshtokens

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/dmitrijs2005/skillhub/internal/common"
	"github.com/dmitrijs2005/skillhub/internal/server/models"
)

// MemoryRepository keeps refresh tokens in process memory. It enforces the
// same uniqueness rules as the refresh_tokens table.
type MemoryRepository struct {
	mu     sync.RWMutex
	tokens map[string]models.RefreshTokenRecord
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: map[string]models.RefreshTokenRecord{}, now: time.Now}
}

// Snapshot copies the current contents; Restore puts them back.
func (r *MemoryRepository) Snapshot() map[string]models.RefreshTokenRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.tokens)
}

func (r *MemoryRepository) Restore(s map[string]models.RefreshTokenRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = maps.Clone(s)
}

// Put stores rec as is, skipping every check. Tests use it to plant
// malformed rows.
func (r *MemoryRepository) Put(rec models.RefreshTokenRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[rec.Token] = rec
}

// Len returns the number of stored tokens.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}

func (r *MemoryRepository) Create(ctx context.Context, rec *models.RefreshTokenRecord) error {
	owner, err := rec.Owner()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[rec.Token]; ok {
		return fmt.Errorf("%w: token", common.ErrAlreadyExists)
	}
	for _, existing := range r.tokens {
		if o, err := existing.Owner(); err == nil && o == owner {
			return fmt.Errorf("%w: token for %s", common.ErrAlreadyExists, owner)
		}
	}

	stored := *rec
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now()
	}
	r.tokens[rec.Token] = stored
	return nil
}

func (r *MemoryRepository) Find(ctx context.Context, token string) (*models.RefreshTokenRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &rec, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token]; !ok {
		return common.ErrorNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *MemoryRepository) DeleteByOwner(ctx context.Context, ref models.PrincipalRef) (int64, error) {
	if ref.IsZero() {
		return 0, fmt.Errorf("delete by owner: invalid principal %s", ref)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for tok, rec := range r.tokens {
		if ownedBy(rec, ref) {
			delete(r.tokens, tok)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for tok, rec := range r.tokens {
		if rec.Expired(now) {
			delete(r.tokens, tok)
			n++
		}
	}
	return n, nil
}

// ownedBy matches on the raw columns so malformed rows that still name ref
// are removed too, as a column-based DELETE would.
func ownedBy(rec models.RefreshTokenRecord, ref models.PrincipalRef) bool {
	switch ref.Kind() {
	case models.KindPrimary:
		return rec.PrimaryID != nil && *rec.PrimaryID == ref.ID()
	case models.KindWorker:
		return rec.WorkerID != nil && *rec.WorkerID == ref.ID()
	}
	return false
}

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Repository = (*MemoryRepository)(nil)
)
