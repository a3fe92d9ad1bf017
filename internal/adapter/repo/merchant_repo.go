package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"rewardengine/internal/domain"
)

// MerchantRepositoryPG implements domain.MerchantRepository backed by
// PostgreSQL. Merchant and plan rows are owned by the platform; the engine
// only reads them.
type MerchantRepositoryPG struct {
	q querier
}

// GetByID fetches a merchant.
func (r *MerchantRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Merchant, error) {
	row := r.q.QueryRow(ctx, `SELECT id, name, reward_bps, plan_id, created_at FROM merchants WHERE id = $1`, id)
	var m domain.Merchant
	if err := row.Scan(&m.ID, &m.Name, &m.RewardBps, &m.PlanID, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetPlan fetches a subscription plan.
func (r *MerchantRepositoryPG) GetPlan(ctx context.Context, planID string) (*domain.Plan, error) {
	row := r.q.QueryRow(ctx, `SELECT id, name, monthly_points_cap FROM plans WHERE id = $1`, planID)
	var p domain.Plan
	if err := row.Scan(&p.ID, &p.Name, &p.MonthlyPointsCap); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
