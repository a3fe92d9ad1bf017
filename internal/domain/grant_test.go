package domain

import (
	"testing"
	"time"
)

func vestingGrant(start time.Time, window time.Duration) *Grant {
	return &Grant{
		Status:         GrantStatusVesting,
		VestingStartAt: start,
		VestingEndAt:   start.Add(window),
	}
}

func TestGrantProgress(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	g := vestingGrant(start, 30*24*time.Hour)

	if got := g.Progress(start); got != 0 {
		t.Fatalf("progress at start = %v, want 0", got)
	}
	if got := g.Progress(start.Add(15 * 24 * time.Hour)); got != 50 {
		t.Fatalf("progress at midpoint = %v, want 50", got)
	}
	if got := g.Progress(start.Add(30 * 24 * time.Hour)); got != 100 {
		t.Fatalf("progress at end = %v, want 100", got)
	}
	if got := g.Progress(start.Add(60 * 24 * time.Hour)); got != 100 {
		t.Fatalf("progress past end = %v, want clamped 100", got)
	}
	if got := g.Progress(start.Add(-time.Hour)); got != 0 {
		t.Fatalf("progress before start = %v, want clamped 0", got)
	}
}

func TestGrantDaysRemaining(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	g := vestingGrant(start, 30*24*time.Hour)

	if got := g.DaysRemaining(start); got != 30 {
		t.Fatalf("days at start = %d, want 30", got)
	}
	// A partial day still counts as a full remaining day.
	if got := g.DaysRemaining(start.Add(29*24*time.Hour + time.Hour)); got != 1 {
		t.Fatalf("days with partial day left = %d, want 1", got)
	}
	if got := g.DaysRemaining(start.Add(30 * 24 * time.Hour)); got != 0 {
		t.Fatalf("days at end = %d, want 0", got)
	}
	if got := g.DaysRemaining(start.Add(40 * 24 * time.Hour)); got != 0 {
		t.Fatalf("days past end = %d, want floored 0", got)
	}
}

func TestGrantStatusTerminal(t *testing.T) {
	if GrantStatusVesting.Terminal() {
		t.Fatal("vesting must not be terminal")
	}
	if !GrantStatusVested.Terminal() {
		t.Fatal("vested must be terminal")
	}
	if !GrantStatusCancelled.Terminal() {
		t.Fatal("cancelled must be terminal")
	}
}

func TestMonthlyPeriodRemaining(t *testing.T) {
	p := &MonthlyPeriod{PointsCap: 1000, PointsDistributed: 950}
	if got := p.Remaining(); got != 50 {
		t.Fatalf("remaining = %d, want 50", got)
	}

	p.PointsDistributed = 1000
	if got := p.Remaining(); got != 0 {
		t.Fatalf("remaining at cap = %d, want 0", got)
	}
}

func TestMonthlyPeriodUsagePercent(t *testing.T) {
	cases := []struct {
		distributed int64
		cap         int64
		want        int
	}{
		{0, 1000, 0},
		{250, 1000, 25},
		{955, 1000, 96},
		{1000, 1000, 100},
		{0, 0, 0},
	}
	for _, tc := range cases {
		p := &MonthlyPeriod{PointsDistributed: tc.distributed, PointsCap: tc.cap}
		if got := p.UsagePercent(); got != tc.want {
			t.Fatalf("UsagePercent(%d/%d) = %d, want %d", tc.distributed, tc.cap, got, tc.want)
		}
	}
}

func TestChangeTypeValid(t *testing.T) {
	for _, ct := range []ChangeType{ChangePointReleaseDelay, ChangeMerchantLimits, ChangeEmailNotifications} {
		if !ct.Valid() {
			t.Fatalf("%s should be valid", ct)
		}
	}
	if ChangeType("rebranding").Valid() {
		t.Fatal("unknown change type should be invalid")
	}
}

func TestProposalStatusApproved(t *testing.T) {
	if !ProposalStatusPassed.Approved() {
		t.Fatal("passed must count as approved")
	}
	for _, s := range []ProposalStatus{ProposalStatusDraft, ProposalStatusActive, ProposalStatusRejected} {
		if s.Approved() {
			t.Fatalf("%s must not count as approved", s)
		}
	}
}
