package principals

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/skillhub/internal/common"
	"github.com/dmitrijs2005/skillhub/internal/server/models"
)

// MemoryRepository is an in-process principal store for one kind.
type MemoryRepository struct {
	kind models.PrincipalKind
	mu   sync.RWMutex
	byID map[string]models.Principal
}

func NewMemoryRepository(kind models.PrincipalKind) *MemoryRepository {
	return &MemoryRepository{kind: kind, byID: map[string]models.Principal{}}
}

func (r *MemoryRepository) Kind() models.PrincipalKind { return r.kind }

func (r *MemoryRepository) Snapshot() map[string]models.Principal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.byID)
}

func (r *MemoryRepository) Restore(s map[string]models.Principal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = maps.Clone(s)
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.Principal, error) {
	return r.find(func(p models.Principal) bool { return p.Ref.ID() == id })
}

func (r *MemoryRepository) FindByUsername(ctx context.Context, username string) (*models.Principal, error) {
	return r.find(func(p models.Principal) bool { return p.Username == username })
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.Principal, error) {
	email = normalizeEmail(email)
	return r.find(func(p models.Principal) bool { return normalizeEmail(p.Email) == email })
}

func (r *MemoryRepository) Create(ctx context.Context, p *models.Principal) (*models.Principal, error) {
	if p.Ref.Kind() != r.kind || p.Ref.IsZero() {
		return nil, fmt.Errorf("create %s: invalid principal ref %s", r.kind, p.Ref)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		switch {
		case existing.Ref.ID() == p.Ref.ID():
			return nil, fmt.Errorf("%w: id %s", common.ErrAlreadyExists, p.Ref.ID())
		case existing.Username == p.Username:
			return nil, fmt.Errorf("%w: username %s", common.ErrAlreadyExists, p.Username)
		case normalizeEmail(existing.Email) == normalizeEmail(p.Email):
			return nil, fmt.Errorf("%w: email %s", common.ErrAlreadyExists, p.Email)
		}
	}

	stored := clonePrincipal(*p)
	stored.CreatedAt = time.Now()
	r.byID[p.Ref.ID()] = stored

	out := clonePrincipal(stored)
	return &out, nil
}

func (r *MemoryRepository) SetActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.Active = active
	r.byID[id] = p
	return nil
}

func (r *MemoryRepository) find(match func(models.Principal) bool) (*models.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byID {
		if match(p) {
			out := clonePrincipal(p)
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func clonePrincipal(p models.Principal) models.Principal {
	p.Roles = slices.Clone(p.Roles)
	p.PasswordHash = slices.Clone(p.PasswordHash)
	return p
}

// Emails compare case-insensitively in both stores.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Repository = (*MemoryRepository)(nil)
)
