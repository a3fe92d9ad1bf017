package domain

import "time"

// Merchant is a read-only view of a merchant participating in the loyalty
// network. The reward rate is the merchant-configured percentage expressed in
// basis points.
type Merchant struct {
	ID        string
	Name      string
	RewardBps int64
	PlanID    string
	CreatedAt time.Time
}

// Plan is a subscription plan. MonthlyPointsCap bounds how many points a
// merchant on the plan may distribute per calendar month.
type Plan struct {
	ID               string
	Name             string
	MonthlyPointsCap int64
}
