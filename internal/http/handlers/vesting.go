package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rewardengine/internal/vesting"
)

type vestingGrantView struct {
	grantResponse
	Progress      float64 `json:"progress"`
	DaysRemaining int     `json:"days_remaining"`
}

type bucketView struct {
	Count  int                `json:"count"`
	Total  int64              `json:"total"`
	Grants []vestingGrantView `json:"grants"`
}

func bucketToView(b vesting.Bucket, now time.Time) bucketView {
	view := bucketView{Count: len(b.Grants), Total: b.Total, Grants: []vestingGrantView{}}
	for i := range b.Grants {
		g := &b.Grants[i]
		view.Grants = append(view.Grants, vestingGrantView{
			grantResponse: grantToResponse(g),
			Progress:      g.Progress(now),
			DaysRemaining: g.DaysRemaining(now),
		})
	}
	return view
}

// VestingSummary handles GET /v1/holders/{holderID}/vesting.
func (a *App) VestingSummary(w http.ResponseWriter, r *http.Request) {
	holderID := chi.URLParam(r, "holderID")
	summary, err := a.Engine.VestingSummary(r.Context(), holderID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	now := time.Now().UTC()
	a.json(w, http.StatusOK, map[string]any{
		"vesting":   bucketToView(summary.Vesting, now),
		"vested":    bucketToView(summary.Vested, now),
		"cancelled": bucketToView(summary.Cancelled, now),
	})
}

// MerchantPoints handles GET /v1/merchants/{merchantID}/points.
func (a *App) MerchantPoints(w http.ResponseWriter, r *http.Request) {
	merchantID := chi.URLParam(r, "merchantID")
	report, err := a.Engine.PointsUsage(r.Context(), merchantID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"merchant_id":        report.MerchantID,
		"year":               report.Year,
		"month":              report.Month,
		"points_distributed": report.PointsDistributed,
		"points_cap":         report.PointsCap,
		"remaining":          report.Remaining,
		"usage_percent":      report.UsagePercent,
	})
}
