// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"github.com/openstake/stakepool/pool"
)

// Status is the liveness view of the pool node. The node counts as healthy
// when the pool record exists and the reward claim scheduler is keeping up:
// an overdue claim means distributions stopped flowing.
type Status struct {
	Healthy         bool   `json:"healthy"`
	Initialized     bool   `json:"initialized"`
	LastRewardClaim uint64 `json:"lastRewardClaim"`
	ClaimOverdue    bool   `json:"claimOverdue"`
}

// overdueFactor is how many claim intervals may pass without a successful
// claim before the node reports unhealthy.
const overdueFactor = 2

type Health struct {
	pool  *pool.Pool
	clock pool.Clock
}

func New(p *pool.Pool, clock pool.Clock) *Health {
	if clock == nil {
		clock = pool.SystemClock()
	}
	return &Health{
		pool:  p,
		clock: clock,
	}
}

func (h *Health) Status() (*Status, error) {
	initialized, err := h.pool.IsInitialized()
	if err != nil {
		return nil, err
	}
	if !initialized {
		return &Status{}, nil
	}

	last, err := h.pool.LastRewardClaim()
	if err != nil {
		return nil, err
	}
	interval, err := h.pool.RewardClaimInterval()
	if err != nil {
		return nil, err
	}

	// no deadline before the first claim; there is no reference point yet
	overdue := last > 0 && h.clock.Now() > last+overdueFactor*interval

	return &Status{
		Healthy:         !overdue,
		Initialized:     true,
		LastRewardClaim: last,
		ClaimOverdue:    overdue,
	}, nil
}
