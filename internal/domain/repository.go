package domain

import (
	"context"
	"encoding/json"
	"time"
)

// GrantRepository persists reward grants.
type GrantRepository interface {
	// Create inserts a new grant. Returns ErrDuplicateTransaction when a
	// grant already exists for the same transaction.
	Create(ctx context.Context, grant *Grant) error
	GetByID(ctx context.Context, id string) (*Grant, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*Grant, error)
	ListByHolder(ctx context.Context, holderID string) ([]Grant, error)
	// TransitionStatus atomically moves a grant from one status to another.
	// It reports false without error when the grant was not in the expected
	// prior status, which callers use to detect lost races.
	TransitionStatus(ctx context.Context, id string, from, to GrantStatus, at time.Time) (bool, error)
	// MatureDue transitions every vesting grant whose window has elapsed to
	// vested and returns the number of grants matured.
	MatureDue(ctx context.Context, now time.Time) (int64, error)
}

// PeriodRepository persists merchant monthly point periods.
type PeriodRepository interface {
	Get(ctx context.Context, merchantID string, year, month int) (*MonthlyPeriod, error)
	// GetForUpdate behaves like Get but, inside a transaction, locks the row
	// so concurrent cap checks for the same merchant serialize.
	GetForUpdate(ctx context.Context, merchantID string, year, month int) (*MonthlyPeriod, error)
	Create(ctx context.Context, period *MonthlyPeriod) error
	AddDistributed(ctx context.Context, merchantID string, year, month int, amount int64) error
}

// MerchantRepository reads merchant and plan records owned by the platform.
type MerchantRepository interface {
	GetByID(ctx context.Context, id string) (*Merchant, error)
	GetPlan(ctx context.Context, planID string) (*Plan, error)
}

// ChangeRepository persists loyalty change requests.
type ChangeRepository interface {
	Create(ctx context.Context, change *ChangeRequest) error
	GetByID(ctx context.Context, id string) (*ChangeRequest, error)
	SetProposalID(ctx context.Context, id, proposalID string) error
	UpdateStatus(ctx context.Context, id string, status ChangeStatus, at time.Time) error
	ListPending(ctx context.Context) ([]ChangeRequest, error)
}

// ProposalRepository persists DAO proposals. The voting subsystem owns every
// field after creation; the engine only reads status.
type ProposalRepository interface {
	Create(ctx context.Context, proposal *Proposal) error
	GetByID(ctx context.Context, id string) (*Proposal, error)
}

// ParamRepository stores governed engine parameters. Set must only be reached
// through the change governor's appliers.
type ParamRepository interface {
	Get(ctx context.Context, name string) (*Param, error)
	Set(ctx context.Context, name string, value json.RawMessage, at time.Time) error
}

// Repositories bundles every repository bound to the same execution scope,
// either the shared pool or a single transaction.
type Repositories struct {
	Grants    GrantRepository
	Periods   PeriodRepository
	Merchants MerchantRepository
	Changes   ChangeRepository
	Proposals ProposalRepository
	Params    ParamRepository
}

// Store provides access to repositories and transactional execution. WithinTx
// runs fn against repositories bound to one database transaction; an error
// from fn rolls everything back.
type Store interface {
	Repos() *Repositories
	WithinTx(ctx context.Context, fn func(r *Repositories) error) error
}
