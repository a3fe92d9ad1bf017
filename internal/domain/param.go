package domain

import (
	"encoding/json"
	"time"
)

// Governed parameter names. These values control engine behaviour and are
// only writable through an approved change request.
const (
	ParamVestingWindowDays       = "vesting_window_days"
	ParamDefaultRewardBps        = "default_reward_bps"
	ParamMonthlyPointsCap        = "monthly_points_cap"
	ParamCancellationGraceHours  = "cancellation_grace_period_hours"
	ParamNFTMultiplierCapBps     = "nft_multiplier_cap_bps"
	ParamReferralBonusBps        = "referral_bonus_bps"
	ParamInactivityTimeoutDays   = "inactivity_timeout_days"
	ParamLoyaltyNetworkBatchSize = "loyalty_network_batch_size"
)

// Param is a governed engine parameter. Values are stored as opaque JSON so
// the governance path makes no assumptions about their type.
type Param struct {
	Name      string
	Value     json.RawMessage
	UpdatedAt time.Time
}

// IntValue decodes the parameter as an integer.
func (p *Param) IntValue() (int64, error) {
	var v int64
	if err := json.Unmarshal(p.Value, &v); err != nil {
		return 0, err
	}
	return v, nil
}
