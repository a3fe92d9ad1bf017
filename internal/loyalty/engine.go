package loyalty

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rewardengine/internal/domain"
	"rewardengine/internal/metrics"
	"rewardengine/internal/reward"
	"rewardengine/internal/vesting"
)

// Config carries the engine defaults used when the governed parameters are
// unset.
type Config struct {
	DefaultWindowDays int
	DefaultRewardBps  int64
}

// Engine composes the reward calculator, the monthly cap tracker, and the
// vesting ledger into the transaction-facing operations.
type Engine struct {
	store            domain.Store
	ledger           *vesting.Ledger
	tiers            reward.TierResolver
	defaultWindow    time.Duration
	defaultRewardBps int64
	now              func() time.Time
	metrics          *metrics.EngineMetrics
}

// NewEngine constructs the engine. A nil tier resolver defaults every holder
// to the 1.0x multiplier.
func NewEngine(store domain.Store, ledger *vesting.Ledger, tiers reward.TierResolver, cfg Config) *Engine {
	if tiers == nil {
		tiers = reward.StaticTierResolver{}
	}
	windowDays := cfg.DefaultWindowDays
	if windowDays <= 0 {
		windowDays = vesting.DefaultWindowDays
	}
	return &Engine{
		store:            store,
		ledger:           ledger,
		tiers:            tiers,
		defaultWindow:    time.Duration(windowDays) * 24 * time.Hour,
		defaultRewardBps: cfg.DefaultRewardBps,
		now:              func() time.Time { return time.Now().UTC() },
		metrics:          metrics.Engine(),
	}
}

// SetNowFunc overrides the engine's clock. Nil restores the UTC default.
func (e *Engine) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	e.now = now
	e.ledger.SetNowFunc(now)
}

// ProcessTransactionInput describes a merchant transaction entering the
// engine. RewardBps optionally overrides the merchant's configured rate.
type ProcessTransactionInput struct {
	MerchantID    string
	HolderID      string
	TransactionID string
	Amount        int64
	RewardBps     int64
}

func (in *ProcessTransactionInput) validate() error {
	if strings.TrimSpace(in.MerchantID) == "" {
		return fmt.Errorf("%w: merchant id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.HolderID) == "" {
		return fmt.Errorf("%w: holder id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.TransactionID) == "" {
		return fmt.Errorf("%w: transaction id is required", domain.ErrInvalidInput)
	}
	if in.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// ProcessTransactionResult reports the grant created for a transaction.
type ProcessTransactionResult struct {
	Grant         *domain.Grant
	RewardAmount  int64
	MultiplierBps int64
	CapRemaining  int64
}

// ProcessTransaction computes the reward for a merchant transaction,
// authorizes it against the monthly cap, and creates the vesting grant. The
// cap increment and the grant insert run in one database transaction: a
// failure of either leaves neither applied.
func (e *Engine) ProcessTransaction(ctx context.Context, in ProcessTransactionInput) (*ProcessTransactionResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	multiplierBps, err := e.tiers.MultiplierBps(ctx, in.HolderID)
	if err != nil {
		return nil, fmt.Errorf("resolve tier multiplier: %w", err)
	}

	now := e.now()
	var result ProcessTransactionResult
	err = e.store.WithinTx(ctx, func(r *domain.Repositories) error {
		merchant, err := r.Merchants.GetByID(ctx, in.MerchantID)
		if err != nil {
			return fmt.Errorf("resolve merchant %s: %w", in.MerchantID, err)
		}
		rewardBps := e.resolveRewardBps(ctx, r, in.RewardBps, merchant)
		amount, err := reward.Compute(in.Amount, rewardBps, multiplierBps)
		if err != nil {
			return err
		}

		period, err := vesting.AuthorizeDistribution(ctx, r, merchant, amount, now)
		if err != nil {
			return err
		}
		grant, err := e.ledger.CreateGrant(ctx, r, vesting.CreateGrantInput{
			TransactionID: in.TransactionID,
			MerchantID:    in.MerchantID,
			HolderID:      in.HolderID,
			Amount:        amount,
			Window:        e.vestingWindow(ctx, r),
		})
		if err != nil {
			return err
		}
		result = ProcessTransactionResult{
			Grant:         grant,
			RewardAmount:  amount,
			MultiplierBps: multiplierBps,
			CapRemaining:  period.Remaining(),
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrCapExceeded) {
			e.metrics.CapRejections.Inc()
		}
		return nil, err
	}
	e.metrics.GrantsCreated.Inc()
	return &result, nil
}

// resolveRewardBps picks the reward rate: explicit override, then the
// merchant's configured rate, then the governed default.
func (e *Engine) resolveRewardBps(ctx context.Context, r *domain.Repositories, override int64, merchant *domain.Merchant) int64 {
	if override > 0 {
		return override
	}
	if merchant.RewardBps > 0 {
		return merchant.RewardBps
	}
	if p, err := r.Params.Get(ctx, domain.ParamDefaultRewardBps); err == nil {
		if bps, err := p.IntValue(); err == nil && bps > 0 {
			return bps
		}
	}
	return e.defaultRewardBps
}

// vestingWindow reads the governed window length, falling back to the
// configured default.
func (e *Engine) vestingWindow(ctx context.Context, r *domain.Repositories) time.Duration {
	if p, err := r.Params.Get(ctx, domain.ParamVestingWindowDays); err == nil {
		if days, err := p.IntValue(); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	return e.defaultWindow
}

// CancelTransaction cancels the grant created for a merchant transaction,
// provided its vesting window has not elapsed.
func (e *Engine) CancelTransaction(ctx context.Context, transactionID string) (*domain.Grant, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, fmt.Errorf("%w: transaction id is required", domain.ErrInvalidInput)
	}
	grant, err := e.ledger.CancelByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	e.metrics.GrantsCancelled.Inc()
	return grant, nil
}

// SweepMaturities matures every grant whose vesting window has elapsed and
// returns the count.
func (e *Engine) SweepMaturities(ctx context.Context) (int64, error) {
	matured, err := e.ledger.SweepMaturities(ctx, e.now())
	if err != nil {
		return 0, err
	}
	if matured > 0 {
		e.metrics.GrantsMatured.Add(float64(matured))
	}
	return matured, nil
}

// GrantByTransaction returns the grant recorded for a merchant transaction.
func (e *Engine) GrantByTransaction(ctx context.Context, transactionID string) (*domain.Grant, error) {
	return e.store.Repos().Grants.GetByTransactionID(ctx, transactionID)
}

// VestingSummary returns the holder's grants grouped by vesting state.
func (e *Engine) VestingSummary(ctx context.Context, holderID string) (*vesting.Summary, error) {
	return e.ledger.Summarize(ctx, holderID)
}

// PointsUsage reports the merchant's current-month cap consumption.
func (e *Engine) PointsUsage(ctx context.Context, merchantID string) (*vesting.UsageReport, error) {
	if strings.TrimSpace(merchantID) == "" {
		return nil, fmt.Errorf("%w: merchant id is required", domain.ErrInvalidInput)
	}
	return vesting.Usage(ctx, e.store, merchantID, e.now())
}
