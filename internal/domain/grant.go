package domain

import (
	"math"
	"time"
)

// GrantStatus enumerates the lifecycle states of a reward grant.
type GrantStatus string

const (
	GrantStatusVesting   GrantStatus = "vesting"
	GrantStatusVested    GrantStatus = "vested"
	GrantStatusCancelled GrantStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s GrantStatus) Terminal() bool {
	return s == GrantStatusVested || s == GrantStatusCancelled
}

// Grant is a notional reward recorded against a merchant transaction. The
// amount is fixed at creation and the grant either matures into a vested
// reward at VestingEndAt or is cancelled before then. Grants are never
// deleted.
type Grant struct {
	ID             string
	TransactionID  string
	MerchantID     string
	HolderID       string
	Amount         int64
	Status         GrantStatus
	VestingStartAt time.Time
	VestingEndAt   time.Time
	CancelledAt    *time.Time
	CreatedAt      time.Time
}

// Progress returns how far through the vesting window the grant is, as a
// percentage clamped to [0, 100].
func (g *Grant) Progress(now time.Time) float64 {
	window := g.VestingEndAt.Sub(g.VestingStartAt)
	if window <= 0 {
		return 100
	}
	elapsed := now.Sub(g.VestingStartAt)
	pct := 100 * float64(elapsed) / float64(window)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// DaysRemaining returns the number of whole days until the grant matures,
// rounding partial days up and never going below zero.
func (g *Grant) DaysRemaining(now time.Time) int {
	remaining := g.VestingEndAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}
