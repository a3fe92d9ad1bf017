package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"rewardengine/internal/domain"
)

// ChangeRepositoryPG implements domain.ChangeRepository backed by PostgreSQL.
type ChangeRepositoryPG struct {
	q querier
}

const changeColumns = `id, change_type, parameter_name, old_value, new_value, reason, proposed_by, status, dao_proposal_id, created_at, approved_at, implemented_at`

// Create inserts a new change request.
func (r *ChangeRepositoryPG) Create(ctx context.Context, change *domain.ChangeRequest) error {
	query := `
INSERT INTO loyalty_change_requests (id, change_type, parameter_name, old_value, new_value, reason, proposed_by, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	_, err := r.q.Exec(ctx, query,
		change.ID,
		change.ChangeType,
		change.ParameterName,
		change.OldValue,
		change.NewValue,
		change.Reason,
		change.ProposedBy,
		change.Status,
		change.CreatedAt,
	)
	return err
}

// GetByID fetches a change request.
func (r *ChangeRepositoryPG) GetByID(ctx context.Context, id string) (*domain.ChangeRequest, error) {
	row := r.q.QueryRow(ctx, `SELECT `+changeColumns+` FROM loyalty_change_requests WHERE id = $1`, id)
	return scanChange(row)
}

// SetProposalID links the change request to its DAO proposal.
func (r *ChangeRepositoryPG) SetProposalID(ctx context.Context, id, proposalID string) error {
	tag, err := r.q.Exec(ctx, `UPDATE loyalty_change_requests SET dao_proposal_id = $2 WHERE id = $1`, id, proposalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus advances the change request lifecycle, stamping approved_at
// and implemented_at as the matching states are reached.
func (r *ChangeRepositoryPG) UpdateStatus(ctx context.Context, id string, status domain.ChangeStatus, at time.Time) error {
	query := `
UPDATE loyalty_change_requests
SET status = $2,
    approved_at = CASE WHEN $2 = 'approved' THEN $3 ELSE approved_at END,
    implemented_at = CASE WHEN $2 = 'implemented' THEN $3 ELSE implemented_at END
WHERE id = $1;
`
	tag, err := r.q.Exec(ctx, query, id, status, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListPending returns change requests still awaiting a governance outcome,
// newest first.
func (r *ChangeRepositoryPG) ListPending(ctx context.Context) ([]domain.ChangeRequest, error) {
	rows, err := r.q.Query(ctx, `SELECT `+changeColumns+` FROM loyalty_change_requests WHERE status = 'pending' ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []domain.ChangeRequest
	for rows.Next() {
		c, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		changes = append(changes, *c)
	}
	return changes, rows.Err()
}

func scanChange(row pgx.Row) (*domain.ChangeRequest, error) {
	var (
		c          domain.ChangeRequest
		proposalID *string
	)
	if err := row.Scan(
		&c.ID,
		&c.ChangeType,
		&c.ParameterName,
		&c.OldValue,
		&c.NewValue,
		&c.Reason,
		&c.ProposedBy,
		&c.Status,
		&proposalID,
		&c.CreatedAt,
		&c.ApprovedAt,
		&c.ImplementedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if proposalID != nil {
		c.ProposalID = *proposalID
	}
	return &c, nil
}
