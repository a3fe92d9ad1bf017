package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rewardengine/internal/domain"
	"rewardengine/internal/loyalty"
)

type processTransactionRequest struct {
	MerchantID    string `json:"merchant_id"`
	HolderID      string `json:"holder_id"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	RewardBps     int64  `json:"reward_bps"`
}

type grantResponse struct {
	GrantID        string     `json:"grant_id"`
	TransactionID  string     `json:"transaction_id"`
	Amount         int64      `json:"amount"`
	Status         string     `json:"status"`
	VestingStartAt time.Time  `json:"vesting_start_at"`
	VestingEndAt   time.Time  `json:"vesting_end_at"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
}

func grantToResponse(g *domain.Grant) grantResponse {
	return grantResponse{
		GrantID:        g.ID,
		TransactionID:  g.TransactionID,
		Amount:         g.Amount,
		Status:         string(g.Status),
		VestingStartAt: g.VestingStartAt,
		VestingEndAt:   g.VestingEndAt,
		CancelledAt:    g.CancelledAt,
	}
}

// TransactionsProcess handles POST /v1/transactions.
func (a *App) TransactionsProcess(w http.ResponseWriter, r *http.Request) {
	var req processTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	result, err := a.Engine.ProcessTransaction(r.Context(), loyalty.ProcessTransactionInput{
		MerchantID:    req.MerchantID,
		HolderID:      req.HolderID,
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		RewardBps:     req.RewardBps,
	})
	if errors.Is(err, domain.ErrDuplicateTransaction) {
		// Point the caller at the grant that already exists for this
		// transaction.
		if existing, lookupErr := a.Engine.GrantByTransaction(r.Context(), req.TransactionID); lookupErr == nil {
			a.json(w, http.StatusConflict, map[string]any{
				"error":    "duplicate_transaction",
				"message":  "transaction already has a reward grant",
				"grant_id": existing.ID,
			})
			return
		}
		a.domainError(w, r, err)
		return
	}
	if err != nil {
		a.domainError(w, r, err)
		return
	}

	a.json(w, http.StatusCreated, map[string]any{
		"grant":          grantToResponse(result.Grant),
		"reward_amount":  result.RewardAmount,
		"multiplier_bps": result.MultiplierBps,
		"cap_remaining":  result.CapRemaining,
	})
}

// TransactionsCancel handles POST /v1/transactions/{transactionID}/cancel.
func (a *App) TransactionsCancel(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")
	grant, err := a.Engine.CancelTransaction(r.Context(), transactionID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, grantToResponse(grant))
}
