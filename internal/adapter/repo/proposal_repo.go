package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"rewardengine/internal/domain"
)

// ProposalRepositoryPG implements domain.ProposalRepository backed by
// PostgreSQL. After creation the voting subsystem owns every column; the
// engine only reads.
type ProposalRepositoryPG struct {
	q querier
}

// Create inserts a new DAO proposal in the draft state.
func (r *ProposalRepositoryPG) Create(ctx context.Context, proposal *domain.Proposal) error {
	query := `
INSERT INTO dao_proposals (id, title, description, full_description, category, voting_type, status, loyalty_change_id, tags, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`
	_, err := r.q.Exec(ctx, query,
		proposal.ID,
		proposal.Title,
		proposal.Description,
		proposal.FullDescription,
		proposal.Category,
		proposal.VotingType,
		proposal.Status,
		proposal.ChangeRequestID,
		proposal.Tags,
		proposal.CreatedAt,
	)
	return err
}

// GetByID fetches a proposal.
func (r *ProposalRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Proposal, error) {
	query := `
SELECT id, title, description, full_description, category, voting_type, status, loyalty_change_id, tags, created_at
FROM dao_proposals
WHERE id = $1;
`
	row := r.q.QueryRow(ctx, query, id)
	var p domain.Proposal
	if err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.FullDescription,
		&p.Category,
		&p.VotingType,
		&p.Status,
		&p.ChangeRequestID,
		&p.Tags,
		&p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
