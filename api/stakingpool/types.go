// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakingpool

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/openstake/stakepool/stakepool"
)

// Status is the aggregate view of the pool record.
type Status struct {
	Initialized     bool                  `json:"initialized"`
	Admin           *stakepool.Address    `json:"admin,omitempty"`
	Validator       *stakepool.Address    `json:"validator,omitempty"`
	Operator        string                `json:"operator,omitempty"`
	ExchangeRate    uint64                `json:"exchangeRate"`
	TotalStaked     *math.HexOrDecimal256 `json:"totalStaked"`
	TotalDelegation *math.HexOrDecimal256 `json:"totalDelegation"`
	UnstakingPeriod uint64                `json:"unstakingPeriod"`
	Claimable       bool                  `json:"claimable"`
}

type InitializeRequest struct {
	Admin     stakepool.Address `json:"admin"`
	Validator stakepool.Address `json:"validator"`
	Operator  string            `json:"operator"`
}

type StakeRequest struct {
	Staker stakepool.Address     `json:"staker"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type ValidatorUpdateRequest struct {
	Caller    stakepool.Address `json:"caller"`
	Validator stakepool.Address `json:"validator"`
	Operator  string            `json:"operator"`
}

type IntervalUpdateRequest struct {
	Caller   stakepool.Address `json:"caller"`
	Interval uint64            `json:"interval"`
}

type ClaimRequest struct {
	Caller stakepool.Address `json:"caller"`
}

type ClaimResponse struct {
	Claimed bool `json:"claimed"`
}

type ClaimableResponse struct {
	Claimable bool `json:"claimable"`
}

type LPPosition struct {
	Shares  *math.HexOrDecimal256 `json:"shares"`
	Pending *math.HexOrDecimal256 `json:"pending"`
}

type LPClaimRequest struct {
	Staker stakepool.Address `json:"staker"`
}

type LPClaimResponse struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}
