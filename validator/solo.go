// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validator

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/openstake/stakepool/stakepool"
	"github.com/openstake/stakepool/token"
)

// SoloDelegator simulates the validator mechanism in-process, for solo mode
// and tests. Rewards accrue through AccrueReward and are paid out on claim.
type SoloDelegator struct {
	mu        sync.Mutex
	delegated map[stakepool.Address]*big.Int
	pending   map[stakepool.Address]*big.Int
}

func NewSolo() *SoloDelegator {
	return &SoloDelegator{
		delegated: make(map[stakepool.Address]*big.Int),
		pending:   make(map[stakepool.Address]*big.Int),
	}
}

func (d *SoloDelegator) Delegate(_ stakepool.Address, _ token.Kind, validator stakepool.Address, amount *big.Int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cur, ok := d.delegated[validator]
	if !ok {
		cur = new(big.Int)
		d.delegated[validator] = cur
	}
	cur.Add(cur, amount)
	return nil
}

func (d *SoloDelegator) Undelegate(_ stakepool.Address, _ token.Kind, validator stakepool.Address, amount *big.Int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cur := d.delegated[validator]
	if cur == nil || cur.Cmp(amount) < 0 {
		return errors.Errorf("undelegate %v from %v exceeds delegation", amount, validator)
	}
	cur.Sub(cur, amount)
	return nil
}

func (d *SoloDelegator) ClaimReward(_ stakepool.Address, _ token.Kind, validator stakepool.Address) (*big.Int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	reward := d.pending[validator]
	if reward == nil {
		return new(big.Int), nil
	}
	delete(d.pending, validator)
	return reward, nil
}

// AccrueReward credits pending rewards to a validator, to be paid out on the
// next claim.
func (d *SoloDelegator) AccrueReward(validator stakepool.Address, amount *big.Int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cur, ok := d.pending[validator]
	if !ok {
		cur = new(big.Int)
		d.pending[validator] = cur
	}
	cur.Add(cur, amount)
}

// Delegated returns the amount currently delegated to a validator.
func (d *SoloDelegator) Delegated(validator stakepool.Address) *big.Int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cur, ok := d.delegated[validator]; ok {
		return new(big.Int).Set(cur)
	}
	return new(big.Int)
}
