package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"rewardengine/internal/domain"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, letting
// the same repository code run inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements domain.Store backed by PostgreSQL.
type Store struct {
	pool  *pgxpool.Pool
	repos *domain.Repositories
}

// NewStore creates a Store over the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, repos: bind(pool)}
}

func bind(q querier) *domain.Repositories {
	return &domain.Repositories{
		Grants:    &GrantRepositoryPG{q: q},
		Periods:   &PeriodRepositoryPG{q: q},
		Merchants: &MerchantRepositoryPG{q: q},
		Changes:   &ChangeRepositoryPG{q: q},
		Proposals: &ProposalRepositoryPG{q: q},
		Params:    &ParamRepositoryPG{q: q},
	}
}

// Repos returns repositories bound to the shared pool.
func (s *Store) Repos() *domain.Repositories { return s.repos }

// WithinTx runs fn against repositories bound to a single database
// transaction. Any error rolls the whole transaction back.
func (s *Store) WithinTx(ctx context.Context, fn func(r *domain.Repositories) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(bind(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
