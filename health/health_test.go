// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openstake/stakepool/pool"
	"github.com/openstake/stakepool/slot"
	"github.com/openstake/stakepool/stakepool"
	"github.com/openstake/stakepool/state"
	"github.com/openstake/stakepool/token"
	"github.com/openstake/stakepool/validator"
)

var (
	admin = stakepool.BytesToAddress([]byte("admin"))
	val   = stakepool.BytesToAddress([]byte("validator-1"))
	alice = stakepool.BytesToAddress([]byte("alice"))
)

func newTestHealth(t *testing.T) (*Health, *pool.Pool, *validator.SoloDelegator, *pool.ManualClock) {
	st := state.New()
	issuer, err := token.Initialize(slot.NewContext(stakepool.BytesToAddress([]byte("token")), st))
	require.NoError(t, err)

	d := validator.NewSolo()
	clock := &pool.ManualClock{T: 1000}
	p := pool.New(stakepool.BytesToAddress([]byte("pool")), st, issuer, d, clock, nil, pool.Options{})

	asset, err := issuer.Mint(issuer.Capabilities(token.Base).Mint, big.NewInt(1_000_000))
	require.NoError(t, err)
	require.NoError(t, issuer.Deposit(alice, asset))

	return New(p, clock), p, d, clock
}

func TestStatusUninitialized(t *testing.T) {
	h, _, _, _ := newTestHealth(t)

	status, err := h.Status()
	require.NoError(t, err)
	assert.False(t, status.Healthy)
	assert.False(t, status.Initialized)
}

func TestStatusBeforeFirstClaim(t *testing.T) {
	h, p, _, clock := newTestHealth(t)
	require.NoError(t, p.Initialize(admin, val, nil))

	// without a claim reference point the node stays healthy
	clock.T = 10 * stakepool.DefaultRewardClaimInterval
	status, err := h.Status()
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.False(t, status.ClaimOverdue)
}

func TestStatusClaimOverdue(t *testing.T) {
	h, p, d, clock := newTestHealth(t)
	require.NoError(t, p.Initialize(admin, val, nil))
	require.NoError(t, p.Stake(alice, big.NewInt(1_000_000)))

	d.AccrueReward(val, big.NewInt(1_000_000))
	clock.T = stakepool.DefaultRewardClaimInterval
	claimed, err := p.TryClaimRewards(admin)
	require.NoError(t, err)
	require.True(t, claimed)

	status, err := h.Status()
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Equal(t, uint64(stakepool.DefaultRewardClaimInterval), status.LastRewardClaim)

	// one missed interval is fine, two is not
	clock.Advance(2*stakepool.DefaultRewardClaimInterval + 1)
	status, err = h.Status()
	require.NoError(t, err)
	assert.False(t, status.Healthy)
	assert.True(t, status.ClaimOverdue)
}
