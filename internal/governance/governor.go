package governance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"rewardengine/internal/domain"
	"rewardengine/internal/metrics"
)

// categoryByChange assigns every governed change class its proposal category.
// Classes without an entry fall through to the router's fail-closed default.
var categoryByChange = map[domain.ChangeType]string{
	domain.ChangePointReleaseDelay:      "technical",
	domain.ChangeReferralParameters:     "rewards",
	domain.ChangeNFTEarningRatios:       "nft",
	domain.ChangeLoyaltyNetworkSettings: "technical",
	domain.ChangeMerchantLimits:         "merchant",
	domain.ChangeInactivityTimeout:      "technical",
	domain.ChangeSMSOTPSettings:         "security",
	domain.ChangeSubscriptionPlans:      "business",
	domain.ChangeAssetInitiative:        "asset",
	domain.ChangeWalletManagement:       "security",
	domain.ChangePaymentGateway:         "infrastructure",
	domain.ChangeEmailNotifications:     "support",
}

// governedParams lists, per change class the engine itself implements, the
// parameter names an approved change is allowed to write. Classes owned by
// other subsystems (wallets, payment gateways, notifications) have no entry
// and cannot be executed here.
var governedParams = map[domain.ChangeType][]string{
	domain.ChangePointReleaseDelay:      {domain.ParamVestingWindowDays, domain.ParamCancellationGraceHours},
	domain.ChangeReferralParameters:     {domain.ParamReferralBonusBps},
	domain.ChangeNFTEarningRatios:       {domain.ParamNFTMultiplierCapBps, domain.ParamDefaultRewardBps},
	domain.ChangeLoyaltyNetworkSettings: {domain.ParamLoyaltyNetworkBatchSize},
	domain.ChangeMerchantLimits:         {domain.ParamMonthlyPointsCap},
	domain.ChangeInactivityTimeout:      {domain.ParamInactivityTimeoutDays},
}

// Governor routes proposed loyalty behaviour changes through DAO governance
// and gates their execution on the linked proposal's outcome.
type Governor struct {
	store   domain.Store
	now     func() time.Time
	metrics *metrics.EngineMetrics
}

// NewGovernor constructs a governor over the given store.
func NewGovernor(store domain.Store) *Governor {
	return &Governor{
		store:   store,
		now:     func() time.Time { return time.Now().UTC() },
		metrics: metrics.Engine(),
	}
}

// SetNowFunc overrides the governor's clock. Nil restores the UTC default.
func (g *Governor) SetNowFunc(now func() time.Time) {
	if now == nil {
		g.now = func() time.Time { return time.Now().UTC() }
		return
	}
	g.now = now
}

// ProposeChangeInput describes a requested loyalty behaviour change.
type ProposeChangeInput struct {
	ChangeType    domain.ChangeType
	ParameterName string
	OldValue      json.RawMessage
	NewValue      json.RawMessage
	Reason        string
	ProposedBy    string
}

func (in *ProposeChangeInput) validate() error {
	if !in.ChangeType.Valid() {
		return fmt.Errorf("%w: unknown change type %q", domain.ErrInvalidInput, in.ChangeType)
	}
	if strings.TrimSpace(in.ParameterName) == "" {
		return fmt.Errorf("%w: parameter name is required", domain.ErrInvalidInput)
	}
	if len(in.NewValue) == 0 {
		return fmt.Errorf("%w: new value is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.ProposedBy) == "" {
		return fmt.Errorf("%w: proposer is required", domain.ErrInvalidInput)
	}
	return nil
}

// ProposeChange creates the change request and its linked DAO proposal in one
// transaction: neither record can exist without the other. It returns both
// records with the link already established.
func (g *Governor) ProposeChange(ctx context.Context, in ProposeChangeInput) (*domain.ChangeRequest, *domain.Proposal, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	now := g.now()
	category := categoryByChange[in.ChangeType]
	route := Classify(category)

	change := &domain.ChangeRequest{
		ID:            uuid.NewString(),
		ChangeType:    in.ChangeType,
		ParameterName: in.ParameterName,
		OldValue:      in.OldValue,
		NewValue:      in.NewValue,
		Reason:        in.Reason,
		ProposedBy:    in.ProposedBy,
		Status:        domain.ChangeStatusPending,
		CreatedAt:     now,
	}
	proposal := &domain.Proposal{
		ID:              uuid.NewString(),
		Title:           proposalTitle(in.ChangeType, in.ParameterName),
		Description:     fmt.Sprintf("Change %s from %s to %s", in.ParameterName, compactJSON(in.OldValue), compactJSON(in.NewValue)),
		FullDescription: proposalBody(in),
		Category:        category,
		VotingType:      route.VotingType(),
		Status:          domain.ProposalStatusDraft,
		ChangeRequestID: change.ID,
		Tags:            []string{"loyalty", "governance", string(in.ChangeType)},
		CreatedAt:       now,
	}
	change.ProposalID = proposal.ID

	err := g.store.WithinTx(ctx, func(r *domain.Repositories) error {
		if err := r.Changes.Create(ctx, change); err != nil {
			return fmt.Errorf("create change request: %w", err)
		}
		if err := r.Proposals.Create(ctx, proposal); err != nil {
			return fmt.Errorf("create proposal: %w", err)
		}
		return r.Changes.SetProposalID(ctx, change.ID, proposal.ID)
	})
	if err != nil {
		return nil, nil, err
	}
	g.metrics.ChangesProposed.Inc()
	return change, proposal, nil
}

// ValidateApproval reports whether the proposal linked to the change request
// has reached the approved terminal state. This is the single gate every
// governed parameter mutation goes through.
func (g *Governor) ValidateApproval(ctx context.Context, changeID string) (bool, *domain.Proposal, error) {
	r := g.store.Repos()
	change, err := r.Changes.GetByID(ctx, changeID)
	if err != nil {
		return false, nil, err
	}
	if change.ProposalID == "" {
		return false, nil, fmt.Errorf("change %s has no linked proposal: %w", changeID, domain.ErrNotApproved)
	}
	proposal, err := r.Proposals.GetByID(ctx, change.ProposalID)
	if err != nil {
		return false, nil, err
	}
	return proposal.Status.Approved(), proposal, nil
}

// ExecuteApprovedChange re-validates the linked proposal, applies the new
// value through the change-type applier, and marks the request implemented.
// A proposal in any state other than passed stops execution with
// ErrNotApproved.
func (g *Governor) ExecuteApprovedChange(ctx context.Context, changeID string) (*domain.ChangeRequest, error) {
	change, err := g.store.Repos().Changes.GetByID(ctx, changeID)
	if err != nil {
		return nil, err
	}
	if change.Status == domain.ChangeStatusImplemented {
		return nil, domain.ErrAlreadyImplemented
	}

	// Never trust the cached change status; read the proposal outcome again.
	approved, proposal, err := g.ValidateApproval(ctx, changeID)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, fmt.Errorf("proposal %s is %s: %w", proposal.ID, proposal.Status, domain.ErrNotApproved)
	}

	now := g.now()
	err = g.store.WithinTx(ctx, func(r *domain.Repositories) error {
		if err := g.applyChange(ctx, r, change, now); err != nil {
			return err
		}
		if err := r.Changes.UpdateStatus(ctx, change.ID, domain.ChangeStatusApproved, now); err != nil {
			return err
		}
		return r.Changes.UpdateStatus(ctx, change.ID, domain.ChangeStatusImplemented, now)
	})
	if err != nil {
		return nil, err
	}
	change.Status = domain.ChangeStatusImplemented
	change.ImplementedAt = &now
	g.metrics.ChangesImplemented.Inc()
	return change, nil
}

// applyChange writes the approved value into the governed parameter store.
// The parameter name must belong to the change class; anything else is
// rejected rather than silently written.
func (g *Governor) applyChange(ctx context.Context, r *domain.Repositories, change *domain.ChangeRequest, now time.Time) error {
	allowed, ok := governedParams[change.ChangeType]
	if !ok {
		return fmt.Errorf("%w: change type %s is not executed by this engine", domain.ErrInvalidInput, change.ChangeType)
	}
	for _, name := range allowed {
		if name == change.ParameterName {
			return r.Params.Set(ctx, change.ParameterName, change.NewValue, now)
		}
	}
	return fmt.Errorf("%w: parameter %q is not governed by change type %s", domain.ErrInvalidInput, change.ParameterName, change.ChangeType)
}

// PendingChanges lists change requests still awaiting a governance outcome.
func (g *Governor) PendingChanges(ctx context.Context) ([]domain.ChangeRequest, error) {
	return g.store.Repos().Changes.ListPending(ctx)
}

var titleCaser = cases.Title(language.English)

// DisplayName renders a change type for proposal titles, e.g.
// "merchant_limits" becomes "Merchant Limits".
func DisplayName(t domain.ChangeType) string {
	return titleCaser.String(strings.ReplaceAll(string(t), "_", " "))
}

func proposalTitle(t domain.ChangeType, parameterName string) string {
	return fmt.Sprintf("Loyalty Change: %s - %s", DisplayName(t), parameterName)
}

func proposalBody(in ProposeChangeInput) string {
	var b strings.Builder
	b.WriteString("# Loyalty Application Behavior Change\n\n")
	fmt.Fprintf(&b, "## Change Type\n%s\n\n", DisplayName(in.ChangeType))
	fmt.Fprintf(&b, "## Parameter\n%s\n\n", in.ParameterName)
	fmt.Fprintf(&b, "## Current Value\n%s\n\n", compactJSON(in.OldValue))
	fmt.Fprintf(&b, "## Proposed Value\n%s\n\n", compactJSON(in.NewValue))
	fmt.Fprintf(&b, "## Reason for Change\n%s\n\n", in.Reason)
	b.WriteString("## Impact Assessment\nThis change affects the behavior of the loyalty application and requires community approval through DAO governance.\n\n")
	b.WriteString("## Implementation\nOnce approved by the DAO, this change will be applied automatically.\n")
	return b.String()
}

func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
