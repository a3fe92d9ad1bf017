package domain

import "time"

// MonthlyPeriod tracks how many points a merchant has distributed within a
// calendar month. The cap is copied from the merchant's plan when the period
// row is first created and stays fixed for the rest of the month even if the
// plan changes.
type MonthlyPeriod struct {
	MerchantID        string
	Year              int
	Month             int
	PointsDistributed int64
	PointsCap         int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Remaining returns how many points the merchant may still distribute in the
// period.
func (p *MonthlyPeriod) Remaining() int64 {
	r := p.PointsCap - p.PointsDistributed
	if r < 0 {
		return 0
	}
	return r
}

// UsagePercent returns the share of the cap consumed, rounded to the nearest
// whole percent.
func (p *MonthlyPeriod) UsagePercent() int {
	if p.PointsCap == 0 {
		return 0
	}
	return int((p.PointsDistributed*100 + p.PointsCap/2) / p.PointsCap)
}
