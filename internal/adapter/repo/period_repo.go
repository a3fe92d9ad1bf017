package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"rewardengine/internal/domain"
)

// PeriodRepositoryPG implements domain.PeriodRepository backed by PostgreSQL.
type PeriodRepositoryPG struct {
	q querier
}

const periodColumns = `merchant_id, year, month, points_distributed, points_cap, created_at, updated_at`

// Get fetches the merchant's period row for a calendar month.
func (r *PeriodRepositoryPG) Get(ctx context.Context, merchantID string, year, month int) (*domain.MonthlyPeriod, error) {
	row := r.q.QueryRow(ctx, `SELECT `+periodColumns+` FROM merchant_monthly_points WHERE merchant_id = $1 AND year = $2 AND month = $3`, merchantID, year, month)
	return scanPeriod(row)
}

// GetForUpdate locks the period row for the rest of the enclosing
// transaction, serializing concurrent cap checks for the same merchant.
func (r *PeriodRepositoryPG) GetForUpdate(ctx context.Context, merchantID string, year, month int) (*domain.MonthlyPeriod, error) {
	row := r.q.QueryRow(ctx, `SELECT `+periodColumns+` FROM merchant_monthly_points WHERE merchant_id = $1 AND year = $2 AND month = $3 FOR UPDATE`, merchantID, year, month)
	return scanPeriod(row)
}

// Create inserts a fresh period row. A concurrent insert of the same period
// is not an error; the caller re-reads under the lock afterwards.
func (r *PeriodRepositoryPG) Create(ctx context.Context, period *domain.MonthlyPeriod) error {
	query := `
INSERT INTO merchant_monthly_points (merchant_id, year, month, points_distributed, points_cap, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (merchant_id, year, month) DO NOTHING;
`
	_, err := r.q.Exec(ctx, query,
		period.MerchantID,
		period.Year,
		period.Month,
		period.PointsDistributed,
		period.PointsCap,
		period.CreatedAt,
	)
	return err
}

// AddDistributed increments the period's running total.
func (r *PeriodRepositoryPG) AddDistributed(ctx context.Context, merchantID string, year, month int, amount int64) error {
	query := `
UPDATE merchant_monthly_points
SET points_distributed = points_distributed + $4,
    updated_at = NOW()
WHERE merchant_id = $1
  AND year = $2
  AND month = $3;
`
	tag, err := r.q.Exec(ctx, query, merchantID, year, month, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPeriod(row pgx.Row) (*domain.MonthlyPeriod, error) {
	var p domain.MonthlyPeriod
	if err := row.Scan(
		&p.MerchantID,
		&p.Year,
		&p.Month,
		&p.PointsDistributed,
		&p.PointsCap,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
