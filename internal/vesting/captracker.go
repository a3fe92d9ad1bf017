package vesting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rewardengine/internal/domain"
)

// AuthorizeDistribution checks and applies a distribution against the
// merchant's monthly cap. The period row is created lazily on the first
// distribution of a calendar month, copying the cap from the merchant's plan
// at that moment; later plan changes only affect future months.
//
// The repositories must be transaction-bound: the row lock taken by
// GetForUpdate is what serializes concurrent cap checks for the same
// merchant, and the caller pairs the increment with grant creation in the
// same transaction.
func AuthorizeDistribution(ctx context.Context, r *domain.Repositories, merchant *domain.Merchant, amount int64, now time.Time) (*domain.MonthlyPeriod, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", domain.ErrInvalidInput)
	}
	year, month := now.UTC().Year(), int(now.UTC().Month())

	period, err := r.Periods.GetForUpdate(ctx, merchant.ID, year, month)
	if errors.Is(err, domain.ErrNotFound) {
		plan, planErr := r.Merchants.GetPlan(ctx, merchant.PlanID)
		if planErr != nil {
			return nil, fmt.Errorf("resolve plan for merchant %s: %w", merchant.ID, planErr)
		}
		period = &domain.MonthlyPeriod{
			MerchantID: merchant.ID,
			Year:       year,
			Month:      month,
			PointsCap:  plan.MonthlyPointsCap,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if createErr := r.Periods.Create(ctx, period); createErr != nil {
			return nil, createErr
		}
		// Re-read under the lock in case another transaction created the row
		// first.
		period, err = r.Periods.GetForUpdate(ctx, merchant.ID, year, month)
	}
	if err != nil {
		return nil, err
	}

	if period.PointsDistributed+amount > period.PointsCap {
		return period, fmt.Errorf("%w: %d of %d points used, %d requested", domain.ErrCapExceeded, period.PointsDistributed, period.PointsCap, amount)
	}
	if err := r.Periods.AddDistributed(ctx, merchant.ID, year, month, amount); err != nil {
		return nil, err
	}
	period.PointsDistributed += amount
	period.UpdatedAt = now
	return period, nil
}

// UsageReport describes a merchant's cap consumption for a calendar month.
type UsageReport struct {
	MerchantID        string
	Year              int
	Month             int
	PointsDistributed int64
	PointsCap         int64
	Remaining         int64
	UsagePercent      int
}

// Usage reports the merchant's current-month cap consumption. When no period
// row exists yet the report is built from the plan cap with zero usage.
func Usage(ctx context.Context, store domain.Store, merchantID string, now time.Time) (*UsageReport, error) {
	r := store.Repos()
	year, month := now.UTC().Year(), int(now.UTC().Month())

	period, err := r.Periods.Get(ctx, merchantID, year, month)
	if errors.Is(err, domain.ErrNotFound) {
		merchant, mErr := r.Merchants.GetByID(ctx, merchantID)
		if mErr != nil {
			return nil, mErr
		}
		plan, pErr := r.Merchants.GetPlan(ctx, merchant.PlanID)
		if pErr != nil {
			return nil, pErr
		}
		period = &domain.MonthlyPeriod{
			MerchantID: merchantID,
			Year:       year,
			Month:      month,
			PointsCap:  plan.MonthlyPointsCap,
		}
	} else if err != nil {
		return nil, err
	}

	return &UsageReport{
		MerchantID:        merchantID,
		Year:              period.Year,
		Month:             period.Month,
		PointsDistributed: period.PointsDistributed,
		PointsCap:         period.PointsCap,
		Remaining:         period.Remaining(),
		UsagePercent:      period.UsagePercent(),
	}, nil
}
