// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package stakingpool_test

import (
	"math/big"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openstake/stakepool/api/stakingpool"
	"github.com/openstake/stakepool/client"
	"github.com/openstake/stakepool/pool"
	"github.com/openstake/stakepool/slot"
	"github.com/openstake/stakepool/stakepool"
	"github.com/openstake/stakepool/state"
	"github.com/openstake/stakepool/token"
	"github.com/openstake/stakepool/validator"
)

var (
	poolAddr  = stakepool.BytesToAddress([]byte("pool"))
	tokenAddr = stakepool.BytesToAddress([]byte("token"))
	admin     = stakepool.BytesToAddress([]byte("admin"))
	val       = stakepool.BytesToAddress([]byte("validator-1"))
	alice     = stakepool.BytesToAddress([]byte("alice"))

	ts        *httptest.Server
	tclient   *client.Client
	issuer    *token.Issuer
	delegator *validator.SoloDelegator
	clock     *pool.ManualClock
)

func initPoolServer(t *testing.T) *pool.Pool {
	st := state.New()
	var err error
	issuer, err = token.Initialize(slot.NewContext(tokenAddr, st))
	require.NoError(t, err)

	delegator = validator.NewSolo()
	clock = &pool.ManualClock{T: 1000}
	p := pool.New(poolAddr, st, issuer, delegator, clock, nil, pool.Options{})

	router := mux.NewRouter()
	stakingpool.New(p).Mount(router, "/pool")
	ts = httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return p
}

func mintBase(t *testing.T, account stakepool.Address, amount int64) {
	asset, err := issuer.Mint(issuer.Capabilities(token.Base).Mint, big.NewInt(amount))
	require.NoError(t, err)
	require.NoError(t, issuer.Deposit(account, asset))
}

func TestPoolAPI(t *testing.T) {
	initPoolServer(t)
	tclient = client.New(ts.URL)

	t.Run("statusUninitialized", testStatusUninitialized)
	t.Run("initialize", testInitialize)
	t.Run("stake", testStake)
	t.Run("claimRewards", testClaimRewards)
	t.Run("lpRewards", testLPRewards)
	t.Run("unstake", testUnstake)
	t.Run("badRequests", testBadRequests)
}

func testStatusUninitialized(t *testing.T) {
	status, err := tclient.Status()
	require.NoError(t, err)
	assert.False(t, status.Initialized)
}

func testInitialize(t *testing.T) {
	status, err := tclient.Initialize(admin, val, "operator-1")
	require.NoError(t, err)
	assert.True(t, status.Initialized)
	assert.Equal(t, val, *status.Validator)
	assert.Equal(t, "operator-1", status.Operator)
	assert.Equal(t, uint64(stakepool.ExchangeRateScale), status.ExchangeRate)

	// the record is created exactly once
	_, err = tclient.Initialize(admin, val, "operator-1")
	assert.ErrorIs(t, err, client.ErrNot200Status)
}

func testStake(t *testing.T) {
	mintBase(t, alice, 2_000_000)

	status, err := tclient.Stake(alice, big.NewInt(1_600_000))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_600_000), (*big.Int)(status.TotalStaked))
	assert.Equal(t, big.NewInt(1_600_000), (*big.Int)(status.TotalDelegation))
}

func testClaimRewards(t *testing.T) {
	delegator.AccrueReward(val, big.NewInt(1_000_000))

	claimable, err := tclient.Claimable()
	require.NoError(t, err)
	assert.False(t, claimable)

	claimed, err := tclient.ClaimRewards(admin)
	require.NoError(t, err)
	assert.False(t, claimed)

	clock.T = stakepool.DefaultRewardClaimInterval

	claimable, err = tclient.Claimable()
	require.NoError(t, err)
	assert.True(t, claimable)

	// only the admin may trigger the claim
	_, err = tclient.ClaimRewards(alice)
	assert.ErrorIs(t, err, client.ErrNot200Status)

	claimed, err = tclient.ClaimRewards(admin)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func testLPRewards(t *testing.T) {
	pos, err := tclient.LPPosition(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_600_000), (*big.Int)(pos.Shares))
	assert.Equal(t, big.NewInt(800_000), (*big.Int)(pos.Pending))

	amount, err := tclient.ClaimLPRewards(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(800_000), amount)

	// nothing left after the payout
	_, err = tclient.ClaimLPRewards(alice)
	assert.ErrorIs(t, err, client.ErrNot200Status)
}

func testUnstake(t *testing.T) {
	status, err := tclient.Unstake(alice, big.NewInt(500_000))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_100_000), (*big.Int)(status.TotalStaked))
}

func testBadRequests(t *testing.T) {
	_, err := tclient.Stake(alice, big.NewInt(1)) // below the stake minimum
	assert.ErrorIs(t, err, client.ErrNot200Status)

	_, err = tclient.UpdateValidator(alice, val, "x") // not the admin
	assert.ErrorIs(t, err, client.ErrNot200Status)

	_, err = tclient.UpdateRewardInterval(admin, 1) // below the interval floor
	assert.ErrorIs(t, err, client.ErrNot200Status)
}
