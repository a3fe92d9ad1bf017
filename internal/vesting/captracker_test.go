package vesting

import (
	"context"
	"errors"
	"testing"
	"time"

	"rewardengine/internal/adapter/repo/memory"
	"rewardengine/internal/domain"
)

func seedCappedMerchant(t *testing.T, store *memory.Store, cap int64) *domain.Merchant {
	t.Helper()
	store.SeedPlan(domain.Plan{ID: "plan-basic", Name: "Basic", MonthlyPointsCap: cap})
	merchant := domain.Merchant{ID: "merchant-1", Name: "Warung Kopi", RewardBps: 500, PlanID: "plan-basic"}
	store.SeedMerchant(merchant)
	return &merchant
}

func TestAuthorizeDistributionEnforcesCap(t *testing.T) {
	store := memory.NewStore()
	merchant := seedCappedMerchant(t, store, 1000)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	period, err := AuthorizeDistribution(ctx, store.Repos(), merchant, 950, now)
	if err != nil {
		t.Fatalf("AuthorizeDistribution(950): %v", err)
	}
	if period.PointsDistributed != 950 {
		t.Fatalf("distributed = %d, want 950", period.PointsDistributed)
	}
	if period.PointsCap != 1000 {
		t.Fatalf("cap = %d, want 1000", period.PointsCap)
	}

	// 951..1001 would exceed the cap; the rejection must not consume any of it.
	if _, err := AuthorizeDistribution(ctx, store.Repos(), merchant, 51, now); !errors.Is(err, domain.ErrCapExceeded) {
		t.Fatalf("AuthorizeDistribution(51) error = %v, want ErrCapExceeded", err)
	}
	current, err := store.Repos().Periods.Get(ctx, merchant.ID, 2025, 6)
	if err != nil {
		t.Fatalf("Periods.Get: %v", err)
	}
	if current.PointsDistributed != 950 {
		t.Fatalf("distributed after rejection = %d, want 950", current.PointsDistributed)
	}

	// Exactly reaching the cap is allowed.
	period, err = AuthorizeDistribution(ctx, store.Repos(), merchant, 50, now)
	if err != nil {
		t.Fatalf("AuthorizeDistribution(50): %v", err)
	}
	if period.PointsDistributed != 1000 {
		t.Fatalf("distributed = %d, want 1000", period.PointsDistributed)
	}
	if remaining := period.Remaining(); remaining != 0 {
		t.Fatalf("remaining = %d, want 0", remaining)
	}
}

func TestAuthorizeDistributionFreezesCapAtPeriodCreation(t *testing.T) {
	store := memory.NewStore()
	merchant := seedCappedMerchant(t, store, 1000)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	if _, err := AuthorizeDistribution(ctx, store.Repos(), merchant, 10, now); err != nil {
		t.Fatalf("AuthorizeDistribution: %v", err)
	}

	// A plan downgrade mid-month must not shrink the already-opened period.
	store.SeedPlan(domain.Plan{ID: "plan-basic", Name: "Basic", MonthlyPointsCap: 5})
	period, err := AuthorizeDistribution(ctx, store.Repos(), merchant, 10, now)
	if err != nil {
		t.Fatalf("AuthorizeDistribution after downgrade: %v", err)
	}
	if period.PointsCap != 1000 {
		t.Fatalf("cap = %d, want the frozen 1000", period.PointsCap)
	}

	// The next calendar month picks the new cap up.
	july := now.AddDate(0, 1, 0)
	if _, err := AuthorizeDistribution(ctx, store.Repos(), merchant, 10, july); !errors.Is(err, domain.ErrCapExceeded) {
		t.Fatalf("July distribution error = %v, want ErrCapExceeded under the new cap", err)
	}
}

func TestAuthorizeDistributionSeparatesMonths(t *testing.T) {
	store := memory.NewStore()
	merchant := seedCappedMerchant(t, store, 100)
	ctx := context.Background()
	june := time.Date(2025, 6, 30, 23, 0, 0, 0, time.UTC)
	july := time.Date(2025, 7, 1, 1, 0, 0, 0, time.UTC)

	if _, err := AuthorizeDistribution(ctx, store.Repos(), merchant, 100, june); err != nil {
		t.Fatalf("June distribution: %v", err)
	}
	if _, err := AuthorizeDistribution(ctx, store.Repos(), merchant, 100, july); err != nil {
		t.Fatalf("July distribution should open a fresh period: %v", err)
	}
}

func TestAuthorizeDistributionRejectsNegativeAmount(t *testing.T) {
	store := memory.NewStore()
	merchant := seedCappedMerchant(t, store, 100)
	if _, err := AuthorizeDistribution(context.Background(), store.Repos(), merchant, -1, time.Now().UTC()); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestUsageWithoutPeriodRow(t *testing.T) {
	store := memory.NewStore()
	merchant := seedCappedMerchant(t, store, 1000)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	report, err := Usage(context.Background(), store, merchant.ID, now)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if report.PointsDistributed != 0 || report.PointsCap != 1000 {
		t.Fatalf("report = %+v, want zero usage against the plan cap", report)
	}
	if report.Remaining != 1000 || report.UsagePercent != 0 {
		t.Fatalf("report = %+v, want full remaining", report)
	}
}

func TestUsageReportsConsumption(t *testing.T) {
	store := memory.NewStore()
	merchant := seedCappedMerchant(t, store, 1000)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	if _, err := AuthorizeDistribution(ctx, store.Repos(), merchant, 250, now); err != nil {
		t.Fatalf("AuthorizeDistribution: %v", err)
	}

	report, err := Usage(ctx, store, merchant.ID, now)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if report.PointsDistributed != 250 || report.Remaining != 750 {
		t.Fatalf("report = %+v, want 250 used of 1000", report)
	}
	if report.UsagePercent != 25 {
		t.Fatalf("usage percent = %d, want 25", report.UsagePercent)
	}

	if _, err := Usage(ctx, store, "ghost", now); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown merchant error = %v, want ErrNotFound", err)
	}
}
