package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rewardengine/internal/domain"
	"rewardengine/internal/governance"
)

type proposeChangeRequest struct {
	ChangeType    string          `json:"change_type"`
	ParameterName string          `json:"parameter_name"`
	OldValue      json.RawMessage `json:"old_value"`
	NewValue      json.RawMessage `json:"new_value"`
	Reason        string          `json:"reason"`
	ProposedBy    string          `json:"proposed_by"`
}

type changeView struct {
	ID            string     `json:"id"`
	ChangeType    string     `json:"change_type"`
	ParameterName string     `json:"parameter_name"`
	Status        string     `json:"status"`
	ProposalID    string     `json:"proposal_id"`
	CreatedAt     time.Time  `json:"created_at"`
	ImplementedAt *time.Time `json:"implemented_at,omitempty"`
}

func changeToView(c *domain.ChangeRequest) changeView {
	return changeView{
		ID:            c.ID,
		ChangeType:    string(c.ChangeType),
		ParameterName: c.ParameterName,
		Status:        string(c.Status),
		ProposalID:    c.ProposalID,
		CreatedAt:     c.CreatedAt,
		ImplementedAt: c.ImplementedAt,
	}
}

// GovernancePropose handles POST /v1/governance/changes.
func (a *App) GovernancePropose(w http.ResponseWriter, r *http.Request) {
	var req proposeChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	change, proposal, err := a.Governor.ProposeChange(r.Context(), governance.ProposeChangeInput{
		ChangeType:    domain.ChangeType(req.ChangeType),
		ParameterName: req.ParameterName,
		OldValue:      req.OldValue,
		NewValue:      req.NewValue,
		Reason:        req.Reason,
		ProposedBy:    req.ProposedBy,
	})
	if err != nil {
		a.domainError(w, r, err)
		return
	}

	a.json(w, http.StatusCreated, map[string]any{
		"change":      changeToView(change),
		"proposal_id": proposal.ID,
		"category":    proposal.Category,
		"voting_type": proposal.VotingType,
		"dao":         governance.Classify(proposal.Category).Domain.String(),
	})
}

// GovernancePending handles GET /v1/governance/changes.
func (a *App) GovernancePending(w http.ResponseWriter, r *http.Request) {
	changes, err := a.Governor.PendingChanges(r.Context())
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	items := make([]changeView, 0, len(changes))
	for i := range changes {
		items = append(items, changeToView(&changes[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// GovernanceApproval handles GET /v1/governance/changes/{changeID}/approval.
func (a *App) GovernanceApproval(w http.ResponseWriter, r *http.Request) {
	changeID := chi.URLParam(r, "changeID")
	approved, proposal, err := a.Governor.ValidateApproval(r.Context(), changeID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"approved":        approved,
		"proposal_id":     proposal.ID,
		"proposal_status": string(proposal.Status),
	})
}

// GovernanceExecute handles POST /v1/governance/changes/{changeID}/execute.
func (a *App) GovernanceExecute(w http.ResponseWriter, r *http.Request) {
	changeID := chi.URLParam(r, "changeID")
	change, err := a.Governor.ExecuteApprovedChange(r.Context(), changeID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, changeToView(change))
}
