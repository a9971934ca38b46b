// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validator

import (
	"math/big"

	"github.com/openstake/stakepool/stakepool"
	"github.com/openstake/stakepool/token"
)

// Delegator is the validator-side collaborator of the pool. Calls are
// synchronous and attributable to the acting principal; a failed call aborts
// the enclosing pool operation.
type Delegator interface {
	Delegate(staker stakepool.Address, kind token.Kind, validator stakepool.Address, amount *big.Int) error
	Undelegate(staker stakepool.Address, kind token.Kind, validator stakepool.Address, amount *big.Int) error
	ClaimReward(admin stakepool.Address, kind token.Kind, validator stakepool.Address) (*big.Int, error)
}
