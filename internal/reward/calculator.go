package reward

import (
	"fmt"
	"math"

	"rewardengine/internal/domain"
)

const (
	// BpsDenominator scales basis point values back to whole units.
	BpsDenominator = 10_000
	// MaxRewardBps caps the merchant reward rate at 100%.
	MaxRewardBps = 10_000
	// BaseMultiplierBps is the 1.0x multiplier applied to holders without an
	// NFT tier.
	BaseMultiplierBps = 10_000
	// MaxMultiplierBps caps the combined tier multiplier at 2.0x.
	MaxMultiplierBps = 20_000
)

// Compute returns the reward for a transaction amount given the merchant's
// reward rate and the holder's NFT tier multiplier, both in basis points.
// The result always rounds down: repeated rounding up would let a merchant
// distribute more than its configured rate over many transactions.
func Compute(amount, rewardBps, multiplierBps int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: amount must not be negative", domain.ErrInvalidInput)
	}
	if rewardBps < 0 || rewardBps > MaxRewardBps {
		return 0, fmt.Errorf("%w: reward rate must be between 0 and %d bps", domain.ErrInvalidInput, MaxRewardBps)
	}
	if multiplierBps < BaseMultiplierBps || multiplierBps > MaxMultiplierBps {
		return 0, fmt.Errorf("%w: multiplier must be between %d and %d bps", domain.ErrInvalidInput, BaseMultiplierBps, MaxMultiplierBps)
	}
	if rewardBps > 0 && amount > math.MaxInt64/(rewardBps*multiplierBps) {
		return 0, fmt.Errorf("%w: amount too large", domain.ErrInvalidInput)
	}
	// Integer division floors because every operand is non-negative.
	return amount * rewardBps * multiplierBps / (BpsDenominator * BpsDenominator), nil
}
