package principals

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/skillhub/internal/common"
	"github.com/dmitrijs2005/skillhub/internal/dbx"
	"github.com/dmitrijs2005/skillhub/internal/server/models"
)

// psq is the PostgreSQL statement builder with dollar placeholders.
var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var baseColumns = []string{"id", "username", "email", "password_hash", "roles", "active", "created_at"}

// PostgresRepository reads and writes one of primary_accounts / worker_accounts.
type PostgresRepository struct {
	db      dbx.DBTX
	kind    models.PrincipalKind
	table   string
	columns []string
}

// NewPrimaryRepository binds a repository to primary_accounts.
func NewPrimaryRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, kind: models.KindPrimary, table: "primary_accounts", columns: baseColumns}
}

// NewWorkerRepository binds a repository to worker_accounts.
func NewWorkerRepository(db dbx.DBTX) *PostgresRepository {
	cols := append(append([]string{}, baseColumns...), "owner_id")
	return &PostgresRepository{db: db, kind: models.KindWorker, table: "worker_accounts", columns: cols}
}

func (r *PostgresRepository) Kind() models.PrincipalKind { return r.kind }

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Principal, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.Principal, error) {
	return r.findOne(ctx, sq.Eq{"username": username})
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Principal, error) {
	return r.findOne(ctx, sq.Eq{"lower(email)": normalizeEmail(email)})
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Principal) (*models.Principal, error) {
	if p.Ref.Kind() != r.kind || p.Ref.IsZero() {
		return nil, fmt.Errorf("create %s: invalid principal ref %s", r.kind, p.Ref)
	}
	roles, err := json.Marshal(p.RoleNames())
	if err != nil {
		return nil, fmt.Errorf("encoding roles: %w", err)
	}

	cols := []string{"id", "username", "email", "password_hash", "roles", "active"}
	vals := []any{p.Ref.ID(), p.Username, p.Email, p.PasswordHash, roles, p.Active}
	if r.kind == models.KindWorker {
		cols = append(cols, "owner_id")
		vals = append(vals, p.OwnerID)
	}

	query, args, err := psq.Insert(r.table).Columns(cols...).Values(vals...).Suffix("RETURNING created_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building insert: %w", err)
	}

	out := *p
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&out.CreatedAt); err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", common.ErrAlreadyExists, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &out, nil
}

func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) error {
	query, args, err := psq.Update(r.table).Set("active", active).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) findOne(ctx context.Context, where sq.Eq) (*models.Principal, error) {
	query, args, err := psq.Select(r.columns...).From(r.table).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	var (
		id      string
		p       models.Principal
		roles   []byte
		ownerID sql.NullString
	)
	dest := []any{&id, &p.Username, &p.Email, &p.PasswordHash, &roles, &p.Active, &p.CreatedAt}
	if r.kind == models.KindWorker {
		dest = append(dest, &ownerID)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	p.Ref, err = models.NewPrincipalRef(r.kind, id)
	if err != nil {
		return nil, err
	}
	p.OwnerID = ownerID.String

	var names []string
	if len(roles) > 0 {
		if err := json.Unmarshal(roles, &names); err != nil {
			return nil, fmt.Errorf("decoding roles of %s: %w", p.Ref, err)
		}
	}
	p.Roles = models.RolesFromNames(names)
	return &p, nil
}
