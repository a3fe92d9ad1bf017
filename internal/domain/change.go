package domain

import (
	"encoding/json"
	"time"
)

// ChangeType enumerates the governed parameter classes. Any modification to
// loyalty behaviour falls into one of these and must be routed through
// governance before it takes effect.
type ChangeType string

const (
	ChangePointReleaseDelay      ChangeType = "point_release_delay"
	ChangeReferralParameters     ChangeType = "referral_parameters"
	ChangeNFTEarningRatios       ChangeType = "nft_earning_ratios"
	ChangeLoyaltyNetworkSettings ChangeType = "loyalty_network_settings"
	ChangeMerchantLimits         ChangeType = "merchant_limits"
	ChangeInactivityTimeout      ChangeType = "inactivity_timeout"
	ChangeSMSOTPSettings         ChangeType = "sms_otp_settings"
	ChangeSubscriptionPlans      ChangeType = "subscription_plans"
	ChangeAssetInitiative        ChangeType = "asset_initiative_selection"
	ChangeWalletManagement       ChangeType = "wallet_management"
	ChangePaymentGateway         ChangeType = "payment_gateway"
	ChangeEmailNotifications     ChangeType = "email_notifications"
)

// Valid reports whether the change type is a known governed class.
func (t ChangeType) Valid() bool {
	switch t {
	case ChangePointReleaseDelay, ChangeReferralParameters, ChangeNFTEarningRatios,
		ChangeLoyaltyNetworkSettings, ChangeMerchantLimits, ChangeInactivityTimeout,
		ChangeSMSOTPSettings, ChangeSubscriptionPlans, ChangeAssetInitiative,
		ChangeWalletManagement, ChangePaymentGateway, ChangeEmailNotifications:
		return true
	default:
		return false
	}
}

// ChangeStatus enumerates the lifecycle states of a change request.
type ChangeStatus string

const (
	ChangeStatusPending     ChangeStatus = "pending"
	ChangeStatusApproved    ChangeStatus = "approved"
	ChangeStatusRejected    ChangeStatus = "rejected"
	ChangeStatusImplemented ChangeStatus = "implemented"
)

// ChangeRequest records a proposed modification to loyalty behaviour. It is
// created together with its governance proposal and may only reach
// implemented once that proposal has passed.
type ChangeRequest struct {
	ID            string
	ChangeType    ChangeType
	ParameterName string
	OldValue      json.RawMessage
	NewValue      json.RawMessage
	Reason        string
	ProposedBy    string
	Status        ChangeStatus
	ProposalID    string
	CreatedAt     time.Time
	ApprovedAt    *time.Time
	ImplementedAt *time.Time
}
