package repomanager

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/skillhub/internal/dbx"
	"github.com/dmitrijs2005/skillhub/internal/server/models"
	"github.com/dmitrijs2005/skillhub/internal/server/repositories/principals"
	"github.com/dmitrijs2005/skillhub/internal/server/repositories/refreshtokens"
)

// MemoryRepositoryManager keeps everything in process memory. It is used
// when no database DSN is configured and by the service tests.
//
// Transactions are serialised by txMu; a failed unit of work restores the
// snapshot taken when it started. Repositories built from any handle other
// than the transaction's own take txMu per call, so no write can land in the
// middle of a transaction and be lost to its rollback.
type MemoryRepositoryManager struct {
	txMu      sync.Mutex
	primaries *principals.MemoryRepository
	workers   *principals.MemoryRepository
	tokens    *refreshtokens.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		primaries: principals.NewMemoryRepository(models.KindPrimary),
		workers:   principals.NewMemoryRepository(models.KindWorker),
		tokens:    refreshtokens.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

// Conn returns nil: the in-memory repositories ignore the handle.
func (m *MemoryRepositoryManager) Conn() dbx.DBTX { return nil }

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn dbx.TxFunc) (err error) {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	p, w, t := m.primaries.Snapshot(), m.workers.Snapshot(), m.tokens.Snapshot()
	defer func() {
		if r := recover(); r != nil {
			m.restore(p, w, t)
			panic(r)
		}
		if err != nil {
			m.restore(p, w, t)
		}
	}()

	return fn(ctx, &memoryTx{owner: m})
}

// memoryTx marks repositories built inside WithTx. The lock is already held
// there, so they go straight to the stores.
type memoryTx struct {
	dbx.DBTX
	owner *MemoryRepositoryManager
}

func (m *MemoryRepositoryManager) inTx(db dbx.DBTX) bool {
	tx, ok := db.(*memoryTx)
	return ok && tx.owner == m
}

func (m *MemoryRepositoryManager) restore(p, w map[string]models.Principal, t map[string]models.RefreshTokenRecord) {
	m.primaries.Restore(p)
	m.workers.Restore(w)
	m.tokens.Restore(t)
}

func (m *MemoryRepositoryManager) Primaries(db dbx.DBTX) principals.Repository {
	if m.inTx(db) {
		return m.primaries
	}
	return &lockedPrincipals{mu: &m.txMu, repo: m.primaries}
}

func (m *MemoryRepositoryManager) Workers(db dbx.DBTX) principals.Repository {
	if m.inTx(db) {
		return m.workers
	}
	return &lockedPrincipals{mu: &m.txMu, repo: m.workers}
}

func (m *MemoryRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	if m.inTx(db) {
		return m.tokens
	}
	return &lockedTokens{mu: &m.txMu, repo: m.tokens}
}

// TokenStore exposes the concrete token repository for tests.
func (m *MemoryRepositoryManager) TokenStore() *refreshtokens.MemoryRepository { return m.tokens }

func (m *MemoryRepositoryManager) Close() error { return nil }

type lockedPrincipals struct {
	mu   *sync.Mutex
	repo principals.Repository
}

func (r *lockedPrincipals) Kind() models.PrincipalKind { return r.repo.Kind() }

func (r *lockedPrincipals) FindByID(ctx context.Context, id string) (*models.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.FindByID(ctx, id)
}

func (r *lockedPrincipals) FindByUsername(ctx context.Context, username string) (*models.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.FindByUsername(ctx, username)
}

func (r *lockedPrincipals) FindByEmail(ctx context.Context, email string) (*models.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.FindByEmail(ctx, email)
}

func (r *lockedPrincipals) Create(ctx context.Context, p *models.Principal) (*models.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.Create(ctx, p)
}

func (r *lockedPrincipals) SetActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.SetActive(ctx, id, active)
}

type lockedTokens struct {
	mu   *sync.Mutex
	repo refreshtokens.Repository
}

func (r *lockedTokens) Create(ctx context.Context, rec *models.RefreshTokenRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.Create(ctx, rec)
}

func (r *lockedTokens) Find(ctx context.Context, token string) (*models.RefreshTokenRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.Find(ctx, token)
}

func (r *lockedTokens) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.Delete(ctx, token)
}

func (r *lockedTokens) DeleteByOwner(ctx context.Context, ref models.PrincipalRef) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.DeleteByOwner(ctx, ref)
}

func (r *lockedTokens) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.DeleteExpired(ctx, now)
}

var (
	_ RepositoryManager = (*PostgresRepositoryManager)(nil)
	_ RepositoryManager = (*MemoryRepositoryManager)(nil)
)
