// Package memory provides an in-memory domain.Store used by unit tests and
// by deployments that exercise the state machines without PostgreSQL. It
// mirrors the pgx store's semantics: per-transaction rollback, transaction_id
// uniqueness, and compare-and-swap grant transitions.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"rewardengine/internal/domain"
)

type periodKey struct {
	merchantID string
	year       int
	month      int
}

type state struct {
	grants    map[string]domain.Grant
	grantTx   map[string]string
	periods   map[periodKey]domain.MonthlyPeriod
	merchants map[string]domain.Merchant
	plans     map[string]domain.Plan
	changes   map[string]domain.ChangeRequest
	proposals map[string]domain.Proposal
	params    map[string]domain.Param
}

func newState() *state {
	return &state{
		grants:    make(map[string]domain.Grant),
		grantTx:   make(map[string]string),
		periods:   make(map[periodKey]domain.MonthlyPeriod),
		merchants: make(map[string]domain.Merchant),
		plans:     make(map[string]domain.Plan),
		changes:   make(map[string]domain.ChangeRequest),
		proposals: make(map[string]domain.Proposal),
		params:    make(map[string]domain.Param),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.grants {
		c.grants[k] = v
	}
	for k, v := range s.grantTx {
		c.grantTx[k] = v
	}
	for k, v := range s.periods {
		c.periods[k] = v
	}
	for k, v := range s.merchants {
		c.merchants[k] = v
	}
	for k, v := range s.plans {
		c.plans[k] = v
	}
	for k, v := range s.changes {
		c.changes[k] = v
	}
	for k, v := range s.proposals {
		c.proposals[k] = v
	}
	for k, v := range s.params {
		c.params[k] = v
	}
	return c
}

// Store implements domain.Store in memory under a single mutex.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Repos returns repositories that lock the store around each operation.
func (s *Store) Repos() *domain.Repositories { return bindMem(s, false) }

// WithinTx holds the store lock for the duration of fn and restores the
// pre-transaction state when fn fails, matching the pgx store's rollback.
func (s *Store) WithinTx(_ context.Context, fn func(r *domain.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st.clone()
	if err := fn(bindMem(s, true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// SeedMerchant adds a merchant record.
func (s *Store) SeedMerchant(m domain.Merchant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.merchants[m.ID] = m
}

// SeedPlan adds a subscription plan record.
func (s *Store) SeedPlan(p domain.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.plans[p.ID] = p
}

// SetProposalStatus stands in for the DAO voting subsystem, which owns
// proposal status transitions in production.
func (s *Store) SetProposalStatus(id string, status domain.ProposalStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.proposals[id]
	if !ok {
		return false
	}
	p.Status = status
	s.st.proposals[id] = p
	return true
}

func bindMem(s *Store, tx bool) *domain.Repositories {
	b := base{s: s, tx: tx}
	return &domain.Repositories{
		Grants:    &grantRepo{b},
		Periods:   &periodRepo{b},
		Merchants: &merchantRepo{b},
		Changes:   &changeRepo{b},
		Proposals: &proposalRepo{b},
		Params:    &paramRepo{b},
	}
}

type base struct {
	s  *Store
	tx bool
}

// enter takes the store lock unless the caller already holds it through
// WithinTx.
func (b base) enter() func() {
	if b.tx {
		return func() {}
	}
	b.s.mu.Lock()
	return b.s.mu.Unlock
}

type grantRepo struct{ base }

func (r *grantRepo) Create(_ context.Context, grant *domain.Grant) error {
	defer r.enter()()
	st := r.s.st
	if _, exists := st.grantTx[grant.TransactionID]; exists {
		return domain.ErrDuplicateTransaction
	}
	st.grants[grant.ID] = *grant
	st.grantTx[grant.TransactionID] = grant.ID
	return nil
}

func (r *grantRepo) GetByID(_ context.Context, id string) (*domain.Grant, error) {
	defer r.enter()()
	g, ok := r.s.st.grants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &g, nil
}

func (r *grantRepo) GetByTransactionID(_ context.Context, transactionID string) (*domain.Grant, error) {
	defer r.enter()()
	id, ok := r.s.st.grantTx[transactionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	g := r.s.st.grants[id]
	return &g, nil
}

func (r *grantRepo) ListByHolder(_ context.Context, holderID string) ([]domain.Grant, error) {
	defer r.enter()()
	var grants []domain.Grant
	for _, g := range r.s.st.grants {
		if g.HolderID == holderID {
			grants = append(grants, g)
		}
	}
	return grants, nil
}

func (r *grantRepo) TransitionStatus(_ context.Context, id string, from, to domain.GrantStatus, at time.Time) (bool, error) {
	defer r.enter()()
	g, ok := r.s.st.grants[id]
	if !ok || g.Status != from {
		return false, nil
	}
	g.Status = to
	if to == domain.GrantStatusCancelled {
		cancelled := at
		g.CancelledAt = &cancelled
	}
	r.s.st.grants[id] = g
	return true, nil
}

func (r *grantRepo) MatureDue(_ context.Context, now time.Time) (int64, error) {
	defer r.enter()()
	var matured int64
	for id, g := range r.s.st.grants {
		if g.Status == domain.GrantStatusVesting && !g.VestingEndAt.After(now) {
			g.Status = domain.GrantStatusVested
			r.s.st.grants[id] = g
			matured++
		}
	}
	return matured, nil
}

type periodRepo struct{ base }

func (r *periodRepo) Get(_ context.Context, merchantID string, year, month int) (*domain.MonthlyPeriod, error) {
	defer r.enter()()
	p, ok := r.s.st.periods[periodKey{merchantID, year, month}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *periodRepo) GetForUpdate(ctx context.Context, merchantID string, year, month int) (*domain.MonthlyPeriod, error) {
	// The store lock already serializes writers.
	return r.Get(ctx, merchantID, year, month)
}

func (r *periodRepo) Create(_ context.Context, period *domain.MonthlyPeriod) error {
	defer r.enter()()
	key := periodKey{period.MerchantID, period.Year, period.Month}
	if _, exists := r.s.st.periods[key]; exists {
		return nil
	}
	r.s.st.periods[key] = *period
	return nil
}

func (r *periodRepo) AddDistributed(_ context.Context, merchantID string, year, month int, amount int64) error {
	defer r.enter()()
	key := periodKey{merchantID, year, month}
	p, ok := r.s.st.periods[key]
	if !ok {
		return domain.ErrNotFound
	}
	p.PointsDistributed += amount
	r.s.st.periods[key] = p
	return nil
}

type merchantRepo struct{ base }

func (r *merchantRepo) GetByID(_ context.Context, id string) (*domain.Merchant, error) {
	defer r.enter()()
	m, ok := r.s.st.merchants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

func (r *merchantRepo) GetPlan(_ context.Context, planID string) (*domain.Plan, error) {
	defer r.enter()()
	p, ok := r.s.st.plans[planID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

type changeRepo struct{ base }

func (r *changeRepo) Create(_ context.Context, change *domain.ChangeRequest) error {
	defer r.enter()()
	r.s.st.changes[change.ID] = *change
	return nil
}

func (r *changeRepo) GetByID(_ context.Context, id string) (*domain.ChangeRequest, error) {
	defer r.enter()()
	c, ok := r.s.st.changes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *changeRepo) SetProposalID(_ context.Context, id, proposalID string) error {
	defer r.enter()()
	c, ok := r.s.st.changes[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.ProposalID = proposalID
	r.s.st.changes[id] = c
	return nil
}

func (r *changeRepo) UpdateStatus(_ context.Context, id string, status domain.ChangeStatus, at time.Time) error {
	defer r.enter()()
	c, ok := r.s.st.changes[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Status = status
	switch status {
	case domain.ChangeStatusApproved:
		approved := at
		c.ApprovedAt = &approved
	case domain.ChangeStatusImplemented:
		implemented := at
		c.ImplementedAt = &implemented
	}
	r.s.st.changes[id] = c
	return nil
}

func (r *changeRepo) ListPending(_ context.Context) ([]domain.ChangeRequest, error) {
	defer r.enter()()
	var pending []domain.ChangeRequest
	for _, c := range r.s.st.changes {
		if c.Status == domain.ChangeStatusPending {
			pending = append(pending, c)
		}
	}
	return pending, nil
}

type proposalRepo struct{ base }

func (r *proposalRepo) Create(_ context.Context, proposal *domain.Proposal) error {
	defer r.enter()()
	r.s.st.proposals[proposal.ID] = *proposal
	return nil
}

func (r *proposalRepo) GetByID(_ context.Context, id string) (*domain.Proposal, error) {
	defer r.enter()()
	p, ok := r.s.st.proposals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

type paramRepo struct{ base }

func (r *paramRepo) Get(_ context.Context, name string) (*domain.Param, error) {
	defer r.enter()()
	p, ok := r.s.st.params[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *paramRepo) Set(_ context.Context, name string, value json.RawMessage, at time.Time) error {
	defer r.enter()()
	r.s.st.params[name] = domain.Param{Name: name, Value: value, UpdatedAt: at}
	return nil
}
