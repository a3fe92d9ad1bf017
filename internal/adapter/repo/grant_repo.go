package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"rewardengine/internal/domain"
)

// GrantRepositoryPG implements domain.GrantRepository backed by PostgreSQL.
type GrantRepositoryPG struct {
	q querier
}

const grantColumns = `id, transaction_id, merchant_id, holder_id, amount, status, vesting_start_at, vesting_end_at, cancelled_at, created_at`

// Create inserts a new grant. A conflict on transaction_id maps to
// domain.ErrDuplicateTransaction.
func (r *GrantRepositoryPG) Create(ctx context.Context, grant *domain.Grant) error {
	query := `
INSERT INTO reward_grants (id, transaction_id, merchant_id, holder_id, amount, status, vesting_start_at, vesting_end_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	_, err := r.q.Exec(ctx, query,
		grant.ID,
		grant.TransactionID,
		grant.MerchantID,
		grant.HolderID,
		grant.Amount,
		grant.Status,
		grant.VestingStartAt,
		grant.VestingEndAt,
		grant.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateTransaction
	}
	return err
}

// GetByID fetches a grant by its identifier.
func (r *GrantRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Grant, error) {
	row := r.q.QueryRow(ctx, `SELECT `+grantColumns+` FROM reward_grants WHERE id = $1`, id)
	return scanGrant(row)
}

// GetByTransactionID fetches the grant created for a merchant transaction.
func (r *GrantRepositoryPG) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Grant, error) {
	row := r.q.QueryRow(ctx, `SELECT `+grantColumns+` FROM reward_grants WHERE transaction_id = $1`, transactionID)
	return scanGrant(row)
}

// ListByHolder returns the holder's grants ordered by maturity date.
func (r *GrantRepositoryPG) ListByHolder(ctx context.Context, holderID string) ([]domain.Grant, error) {
	rows, err := r.q.Query(ctx, `SELECT `+grantColumns+` FROM reward_grants WHERE holder_id = $1 ORDER BY vesting_end_at ASC`, holderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []domain.Grant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, *g)
	}
	return grants, rows.Err()
}

// TransitionStatus moves a grant between statuses only when its current
// status matches the expected prior state.
func (r *GrantRepositoryPG) TransitionStatus(ctx context.Context, id string, from, to domain.GrantStatus, at time.Time) (bool, error) {
	query := `
UPDATE reward_grants
SET status = $3,
    cancelled_at = CASE WHEN $3 = 'cancelled' THEN $4 ELSE cancelled_at END
WHERE id = $1
  AND status = $2;
`
	tag, err := r.q.Exec(ctx, query, id, from, to, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MatureDue vests every grant whose window elapsed and returns the count.
func (r *GrantRepositoryPG) MatureDue(ctx context.Context, now time.Time) (int64, error) {
	query := `
UPDATE reward_grants
SET status = 'vested'
WHERE status = 'vesting'
  AND vesting_end_at <= $1;
`
	tag, err := r.q.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanGrant(row pgx.Row) (*domain.Grant, error) {
	var g domain.Grant
	if err := row.Scan(
		&g.ID,
		&g.TransactionID,
		&g.MerchantID,
		&g.HolderID,
		&g.Amount,
		&g.Status,
		&g.VestingStartAt,
		&g.VestingEndAt,
		&g.CancelledAt,
		&g.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}
