package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"rewardengine/internal/domain"
)

// ParamRepositoryPG implements domain.ParamRepository backed by PostgreSQL.
type ParamRepositoryPG struct {
	q querier
}

// Get fetches a governed parameter.
func (r *ParamRepositoryPG) Get(ctx context.Context, name string) (*domain.Param, error) {
	row := r.q.QueryRow(ctx, `SELECT name, value, updated_at FROM loyalty_params WHERE name = $1`, name)
	var p domain.Param
	if err := row.Scan(&p.Name, &p.Value, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Set upserts a governed parameter. Only the change governor's appliers call
// this.
func (r *ParamRepositoryPG) Set(ctx context.Context, name string, value json.RawMessage, at time.Time) error {
	query := `
INSERT INTO loyalty_params (name, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE
SET value = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at;
`
	_, err := r.q.Exec(ctx, query, name, value, at)
	return err
}
