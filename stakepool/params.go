// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakepool

import "math/big"

// Constants of the liquid-staking protocol.
const (
	// ExchangeRateScale is the fixed-point scale of the base:derivative exchange rate.
	// A rate equal to the scale means 1:1.
	ExchangeRateScale = uint64(1_000_000)

	// RewardPerTokenScale is the fixed-point scale of the LP reward-per-token accumulator.
	RewardPerTokenScale = uint64(1_000_000_000_000)

	// MinRewardClaimInterval is the floor for the reward claim interval, in seconds.
	MinRewardClaimInterval = uint64(3600)

	// DefaultRewardClaimInterval is the claim interval set at pool initialization, in seconds.
	DefaultRewardClaimInterval = uint64(86400)

	// Reward split ratios, in percent. The three must sum to 100.
	MEVRewardPercent    = uint64(10)
	ProtocolFeePercent  = uint64(10)
	LPRewardPercent     = uint64(80)
	RewardPercentBase   = uint64(100)
	// MaxDistributionDust is the upper bound of per-distribution rounding loss
	// from the three floor divisions above.
	MaxDistributionDust = uint64(2)
)

var (
	// MinimumStake is the smallest amount accepted by a single stake operation.
	MinimumStake = big.NewInt(1_000_000)

	// MaximumStake is the largest amount accepted by a single stake operation.
	MaximumStake = new(big.Int).Mul(big.NewInt(100_000_000), big.NewInt(1_000_000))

	// TotalStakeCeiling caps the cumulative staked amount. A stake pushing the
	// pool total beyond the ceiling fails with an overflow error instead of
	// relying on wraparound semantics.
	TotalStakeCeiling = new(big.Int).Mul(big.NewInt(1_000_000_000), big.NewInt(1_000_000))
)
