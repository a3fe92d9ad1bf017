package vesting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rewardengine/internal/domain"
)

// DefaultWindowDays is the vesting window applied when the governed
// parameter is unset.
const DefaultWindowDays = 30

// Ledger owns the reward grant lifecycle: creation, cancellation within the
// vesting window, and batch maturity.
type Ledger struct {
	store domain.Store
	now   func() time.Time
}

// NewLedger constructs a ledger over the given store.
func NewLedger(store domain.Store) *Ledger {
	return &Ledger{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// SetNowFunc overrides the ledger's clock. Nil restores the UTC default.
func (l *Ledger) SetNowFunc(now func() time.Time) {
	if now == nil {
		l.now = func() time.Time { return time.Now().UTC() }
		return
	}
	l.now = now
}

// CreateGrantInput describes a new grant. Window is the vesting duration.
type CreateGrantInput struct {
	TransactionID string
	MerchantID    string
	HolderID      string
	Amount        int64
	Window        time.Duration
}

func (in *CreateGrantInput) validate() error {
	if strings.TrimSpace(in.TransactionID) == "" {
		return fmt.Errorf("%w: transaction id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.MerchantID) == "" {
		return fmt.Errorf("%w: merchant id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.HolderID) == "" {
		return fmt.Errorf("%w: holder id is required", domain.ErrInvalidInput)
	}
	if in.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", domain.ErrInvalidInput)
	}
	if in.Window <= 0 {
		return fmt.Errorf("%w: vesting window must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// CreateGrant inserts a new grant in the vesting state. The repositories may
// be transaction-bound so the caller can pair grant creation with the cap
// authorization atomically. A second grant for the same transaction fails
// with ErrDuplicateTransaction and changes nothing.
func (l *Ledger) CreateGrant(ctx context.Context, r *domain.Repositories, in CreateGrantInput) (*domain.Grant, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := l.now()
	grant := &domain.Grant{
		ID:             uuid.NewString(),
		TransactionID:  in.TransactionID,
		MerchantID:     in.MerchantID,
		HolderID:       in.HolderID,
		Amount:         in.Amount,
		Status:         domain.GrantStatusVesting,
		VestingStartAt: now,
		VestingEndAt:   now.Add(in.Window),
		CreatedAt:      now,
	}
	if err := r.Grants.Create(ctx, grant); err != nil {
		return nil, err
	}
	return grant, nil
}

// CancelGrant transitions a vesting grant to cancelled. Cancellation is only
// possible strictly before the vesting window elapses; afterwards the grant
// belongs to the holder and the call fails with ErrAlreadyVested even if the
// sweep has not run yet. The transition is a compare-and-swap on the prior
// status, so losing a race against the sweep surfaces as a clean error
// instead of a corrupted state.
func (l *Ledger) CancelGrant(ctx context.Context, grantID string) (*domain.Grant, error) {
	r := l.store.Repos()
	grant, err := r.Grants.GetByID(ctx, grantID)
	if err != nil {
		return nil, err
	}
	if err := cancellableNow(grant, l.now()); err != nil {
		return nil, err
	}
	now := l.now()
	ok, err := r.Grants.TransitionStatus(ctx, grantID, domain.GrantStatusVesting, domain.GrantStatusCancelled, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race; report what the grant became.
		current, err := r.Grants.GetByID(ctx, grantID)
		if err != nil {
			return nil, err
		}
		return nil, cancellableNow(current, now)
	}
	grant.Status = domain.GrantStatusCancelled
	grant.CancelledAt = &now
	return grant, nil
}

func cancellableNow(grant *domain.Grant, now time.Time) error {
	switch grant.Status {
	case domain.GrantStatusVested:
		return domain.ErrAlreadyVested
	case domain.GrantStatusCancelled:
		return domain.ErrAlreadyCancelled
	}
	if !now.Before(grant.VestingEndAt) {
		return domain.ErrAlreadyVested
	}
	return nil
}

// CancelByTransaction resolves the grant for a merchant transaction and
// cancels it.
func (l *Ledger) CancelByTransaction(ctx context.Context, transactionID string) (*domain.Grant, error) {
	grant, err := l.store.Repos().Grants.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return l.CancelGrant(ctx, grant.ID)
}

// SweepMaturities transitions every vesting grant whose window has elapsed to
// vested and returns the number matured. Repeated sweeps are harmless:
// already-vested grants are skipped by the status predicate.
func (l *Ledger) SweepMaturities(ctx context.Context, now time.Time) (int64, error) {
	return l.store.Repos().Grants.MatureDue(ctx, now)
}

// Bucket aggregates grants sharing a status.
type Bucket struct {
	Grants []domain.Grant
	Total  int64
}

// Summary groups a holder's grants by status with per-bucket totals.
type Summary struct {
	Vesting   Bucket
	Vested    Bucket
	Cancelled Bucket
}

// Summarize returns the holder's grants grouped by vesting state.
func (l *Ledger) Summarize(ctx context.Context, holderID string) (*Summary, error) {
	if strings.TrimSpace(holderID) == "" {
		return nil, fmt.Errorf("%w: holder id is required", domain.ErrInvalidInput)
	}
	grants, err := l.store.Repos().Grants.ListByHolder(ctx, holderID)
	if err != nil {
		return nil, err
	}
	var s Summary
	for _, g := range grants {
		switch g.Status {
		case domain.GrantStatusVesting:
			s.Vesting.Grants = append(s.Vesting.Grants, g)
			s.Vesting.Total += g.Amount
		case domain.GrantStatusVested:
			s.Vested.Grants = append(s.Vested.Grants, g)
			s.Vested.Total += g.Amount
		case domain.GrantStatusCancelled:
			s.Cancelled.Grants = append(s.Cancelled.Grants, g)
			s.Cancelled.Total += g.Amount
		}
	}
	return &s, nil
}
