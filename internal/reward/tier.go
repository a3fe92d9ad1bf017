package reward

import (
	"context"
	"strings"
)

// Holder NFT tiers and their base multipliers in basis points.
const (
	TierStandard = "standard"
	TierPremium  = "premium"
	TierVIP      = "vip"

	premiumMultiplierBps = 15_000
)

// TierMultiplierBps resolves the multiplier for an NFT tier plus any earned
// evolution bonus. Unknown tiers fall back to 1.0x and the combined value is
// capped at 2.0x.
func TierMultiplierBps(tier string, evolutionBonusBps int64) int64 {
	multiplier := int64(BaseMultiplierBps)
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case TierPremium, TierVIP:
		multiplier = premiumMultiplierBps
	}
	if evolutionBonusBps > 0 {
		multiplier += evolutionBonusBps
	}
	if multiplier > MaxMultiplierBps {
		multiplier = MaxMultiplierBps
	}
	return multiplier
}

// TierResolver supplies the NFT tier multiplier for a holder. The NFT
// subsystem owns tier data; the engine only consumes the resolved multiplier.
type TierResolver interface {
	MultiplierBps(ctx context.Context, holderID string) (int64, error)
}

// StaticTierResolver resolves multipliers from a fixed map, defaulting to
// 1.0x for unknown holders. Useful for tests and deployments without the NFT
// subsystem.
type StaticTierResolver map[string]int64

func (r StaticTierResolver) MultiplierBps(_ context.Context, holderID string) (int64, error) {
	if bps, ok := r[holderID]; ok {
		return bps, nil
	}
	return BaseMultiplierBps, nil
}
