package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/skillhub/internal/common"
	"github.com/dmitrijs2005/skillhub/internal/dbx"
	"github.com/dmitrijs2005/skillhub/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *models.RefreshTokenRecord) error {
	query := `
		INSERT INTO refresh_tokens (token, expiry_date, username, email, primary_id, worker_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.Token, rec.ExpiryDate, rec.Username, rec.Email, rec.PrimaryID, rec.WorkerID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", common.ErrAlreadyExists, err)
		}
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.RefreshTokenRecord, error) {
	query := `
		SELECT token, expiry_date, username, email, primary_id, worker_id, created_at
		FROM refresh_tokens
		WHERE token = $1
	`
	var (
		rec       models.RefreshTokenRecord
		primaryID sql.NullString
		workerID  sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&rec.Token, &rec.ExpiryDate, &rec.Username, &rec.Email, &primaryID, &workerID, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if primaryID.Valid {
		rec.PrimaryID = &primaryID.String
	}
	if workerID.Valid {
		rec.WorkerID = &workerID.String
	}
	return &rec, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE token = $1
	`
	n, err := r.exec(ctx, query, token)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ref models.PrincipalRef) (int64, error) {
	var query string
	switch ref.Kind() {
	case models.KindPrimary:
		query = `DELETE FROM refresh_tokens WHERE primary_id = $1`
	case models.KindWorker:
		query = `DELETE FROM refresh_tokens WHERE worker_id = $1`
	default:
		return 0, fmt.Errorf("delete by owner: invalid principal %s", ref)
	}
	return r.exec(ctx, query, ref.ID())
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.exec(ctx, `DELETE FROM refresh_tokens WHERE expiry_date < $1`, now)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
