// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"

	"github.com/openstake/stakepool/stakepool"
)

// Split is the outcome of dividing one claimed reward batch across the three
// policy buckets. Each share is a floor division, so up to two minimal units
// per batch (the dust) stay undistributed. That loss is accepted policy, not
// tracked anywhere.
type Split struct {
	MEV      *big.Int
	Protocol *big.Int
	LP       *big.Int
	Dust     *big.Int
}

func share(total *big.Int, percent uint64) *big.Int {
	v := new(big.Int).Mul(total, new(big.Int).SetUint64(percent))
	return v.Quo(v, new(big.Int).SetUint64(stakepool.RewardPercentBase))
}

// ComputeSplit divides total by the fixed MEV/protocol/LP ratios.
func ComputeSplit(total *big.Int) *Split {
	mev := share(total, stakepool.MEVRewardPercent)
	protocol := share(total, stakepool.ProtocolFeePercent)
	lp := share(total, stakepool.LPRewardPercent)

	dust := new(big.Int).Set(total)
	dust.Sub(dust, mev)
	dust.Sub(dust, protocol)
	dust.Sub(dust, lp)

	return &Split{MEV: mev, Protocol: protocol, LP: lp, Dust: dust}
}
