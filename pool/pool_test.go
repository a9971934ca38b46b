// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
	bob       = stakepool.BytesToAddress([]byte("bob"))
)

type testPool struct {
	*Pool
	st        *state.State
	issuer    *token.Issuer
	delegator *validator.SoloDelegator
	clock     *ManualClock
	sink      *MemorySink
}

func newTestPool(t *testing.T, opts Options) *testPool {
	st := state.New()
	iss, err := token.Initialize(slot.NewContext(tokenAddr, st))
	require.NoError(t, err)

	d := validator.NewSolo()
	clock := &ManualClock{T: 1000}
	sink := &MemorySink{}
	return &testPool{
		Pool:      New(poolAddr, st, iss, d, clock, sink, opts),
		st:        st,
		issuer:    iss,
		delegator: d,
		clock:     clock,
		sink:      sink,
	}
}

func (p *testPool) mintBase(t *testing.T, account stakepool.Address, amount int64) {
	asset, err := p.issuer.Mint(p.issuer.Capabilities(token.Base).Mint, big.NewInt(amount))
	require.NoError(t, err)
	require.NoError(t, p.issuer.Deposit(account, asset))
}

func (p *testPool) balance(t *testing.T, account stakepool.Address, kind token.Kind) *big.Int {
	b, err := p.issuer.Balance(account, kind)
	require.NoError(t, err)
	return b
}

func (p *testPool) initialize(t *testing.T) {
	require.NoError(t, p.Initialize(admin, val, []byte("operator-1")))
}

func TestInitialize(t *testing.T) {
	p := newTestPool(t, Options{})

	assert.ErrorIs(t, p.Initialize(admin, stakepool.Address{}, nil), stakepool.ErrInvalidArgument)

	p.initialize(t)

	ok, err := p.IsInitialized()
	assert.NoError(t, err)
	assert.True(t, ok)

	got, err := p.Admin()
	assert.NoError(t, err)
	assert.Equal(t, admin, got)

	got, err = p.Validator()
	assert.NoError(t, err)
	assert.Equal(t, val, got)

	op, err := p.ValidatorOperator()
	assert.NoError(t, err)
	assert.Equal(t, []byte("operator-1"), op)

	rate, err := p.ExchangeRate()
	assert.NoError(t, err)
	assert.Equal(t, uint64(stakepool.ExchangeRateScale), rate)

	assert.ErrorIs(t, p.Initialize(admin, val, nil), stakepool.ErrAlreadyExists)
}

func TestStakeRequiresInitialization(t *testing.T) {
	p := newTestPool(t, Options{})
	p.mintBase(t, alice, 2_000_000)

	assert.ErrorIs(t, p.Stake(alice, big.NewInt(1_500_000)), stakepool.ErrNotFound)
}

func TestStake(t *testing.T) {
	p := newTestPool(t, Options{})
	p.initialize(t)
	p.mintBase(t, alice, 2_000_000)

	require.NoError(t, p.Stake(alice, big.NewInt(1_500_000)))

	assert.Equal(t, big.NewInt(500_000), p.balance(t, alice, token.Base))
	assert.Equal(t, big.NewInt(1_500_000), p.balance(t, poolAddr, token.Base))
	assert.Equal(t, big.NewInt(1_500_000), p.balance(t, alice, token.Staked))

	total, err := p.TotalStaked()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1_500_000), total)

	total, err = p.TotalDelegation()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1_500_000), total)

	assert.Equal(t, big.NewInt(1_500_000), p.delegator.Delegated(val))

	require.Len(t, p.sink.Events, 1)
	ev := p.sink.Events[0].(*StakeEvent)
	assert.Equal(t, alice, ev.Staker)
	assert.Equal(t, big.NewInt(1_500_000), ev.Amount)
	assert.Equal(t, val, ev.Validator)
}

func TestStakeBounds(t *testing.T) {
	p := newTestPool(t, Options{})
	p.initialize(t)
	p.mintBase(t, alice, 2_000_000)

	err := p.Stake(alice, new(big.Int).Sub(stakepool.MinimumStake, big.NewInt(1)))
	assert.ErrorIs(t, err, stakepool.ErrInvalidArgument)

	err = p.Stake(alice, new(big.Int).Add(stakepool.MaximumStake, big.NewInt(1)))
	assert.ErrorIs(t, err, stakepool.ErrInvalidArgument)

	// a failed stake must not move funds
	assert.Equal(t, big.NewInt(2_000_000), p.balance(t, alice, token.Base))
}

func TestStakeCeiling(t *testing.T) {
	p := newTestPool(t, Options{})
	p.initialize(t)

	// fill the pool to its ceiling with maximum-size stakes
	steps := new(big.Int).Quo(stakepool.TotalStakeCeiling, stakepool.MaximumStake).Int64()
	funds := new(big.Int).Mul(stakepool.MaximumStake, big.NewInt(steps+1))
	asset, err := p.issuer.Mint(p.issuer.Capabilities(token.Base).Mint, funds)
	require.NoError(t, err)
	require.NoError(t, p.issuer.Deposit(alice, asset))

	for range steps {
		require.NoError(t, p.Stake(alice, stakepool.MaximumStake))
	}
	assert.ErrorIs(t, p.Stake(alice, stakepool.MaximumStake), stakepool.ErrOverflow)
}

func TestUnstakeRoundTrip(t *testing.T) {
	p := newTestPool(t, Options{})
	p.initialize(t)
	p.mintBase(t, alice, 1_000_000)

	require.NoError(t, p.Stake(alice, big.NewInt(1_000_000)))
	require.NoError(t, p.Unstake(alice, big.NewInt(1_000_000)))

	// at a 1:1 rate the full amount comes back
	assert.Equal(t, big.NewInt(1_000_000), p.balance(t, alice, token.Base))
	assert.Equal(t, 0, p.balance(t, alice, token.Staked).Cmp(new(big.Int)))
	assert.Equal(t, 0, p.balance(t, poolAddr, token.Base).Cmp(new(big.Int)))

	total, err := p.TotalStaked()
	assert.NoError(t, err)
	assert.Equal(t, 0, total.Cmp(new(big.Int)))
	assert.Equal(t, new(big.Int), p.delegator.Delegated(val))
}

func TestUnstakeErrors(t *testing.T) {
	p := newTestPool(t, Options{})
	p.initialize(t)
	p.mintBase(t, alice, 1_000_000)
	require.NoError(t, p.Stake(alice, big.NewInt(1_000_000)))

	assert.ErrorIs(t, p.Unstake(alice, new(big.Int)), stakepool.ErrInvalidArgument)

	// alice cannot burn more derivative than she holds
	assert.ErrorIs(t, p.Unstake(alice, big.NewInt(1_000_001)), stakepool.ErrInsufficientBalance)
}

type failingDelegator struct {
	*validator.SoloDelegator
	failDelegate   bool
	failUndelegate bool
}

func (d *failingDelegator) Delegate(staker stakepool.Address, kind token.Kind, v stakepool.Address, amount *big.Int) error {
	if d.failDelegate {
		return errors.New("delegation rejected")
	}
	return d.SoloDelegator.Delegate(staker, kind, v, amount)
}

func (d *failingDelegator) Undelegate(staker stakepool.Address, kind token.Kind, v stakepool.Address, amount *big.Int) error {
	if d.failUndelegate {
		return errors.New("undelegation rejected")
	}
	return d.SoloDelegator.Undelegate(staker, kind, v, amount)
}

func TestFailedDelegateRevertsEverything(t *testing.T) {
	p := newTestPool(t, Options{})
	d := &failingDelegator{SoloDelegator: validator.NewSolo(), failDelegate: true}
	p.Pool = New(poolAddr, p.st, p.issuer, d, p.clock, p.sink, Options{})
	p.initialize(t)
	p.mintBase(t, alice, 1_000_000)

	assert.Error(t, p.Stake(alice, big.NewInt(1_000_000)))

	// nothing may have moved
	assert.Equal(t, big.NewInt(1_000_000), p.balance(t, alice, token.Base))
	assert.Equal(t, 0, p.balance(t, poolAddr, token.Base).Cmp(new(big.Int)))
	assert.Equal(t, 0, p.balance(t, alice, token.Staked).Cmp(new(big.Int)))

	total, err := p.TotalStaked()
	assert.NoError(t, err)
	assert.Equal(t, 0, total.Cmp(new(big.Int)))
	assert.Empty(t, p.sink.Events)
}

func TestFailedUndelegateRevertsEverything(t *testing.T) {
	p := newTestPool(t, Options{})
	d := &failingDelegator{SoloDelegator: validator.NewSolo()}
	p.Pool = New(poolAddr, p.st, p.issuer, d, p.clock, p.sink, Options{})
	p.initialize(t)
	p.mintBase(t, alice, 1_000_000)
	require.NoError(t, p.Stake(alice, big.NewInt(1_000_000)))

	d.failUndelegate = true
	assert.Error(t, p.Unstake(alice, big.NewInt(400_000)))

	assert.Equal(t, big.NewInt(1_000_000), p.balance(t, alice, token.Staked))
	total, err := p.TotalStaked()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000), total)
}

func TestUpdateValidator(t *testing.T) {
	p := newTestPool(t, Options{})
	p.initialize(t)
	newVal := stakepool.BytesToAddress([]byte("validator-2"))

	assert.ErrorIs(t, p.UpdateValidator(alice, newVal, nil), stakepool.ErrPermissionDenied)
	assert.ErrorIs(t, p.UpdateValidator(admin, stakepool.Address{}, nil), stakepool.ErrInvalidArgument)

	require.NoError(t, p.UpdateValidator(admin, newVal, []byte("operator-2")))

	got, err := p.Validator()
	assert.NoError(t, err)
	assert.Equal(t, newVal, got)

	op, err := p.ValidatorOperator()
	assert.NoError(t, err)
	assert.Equal(t, []byte("operator-2"), op)

	require.Len(t, p.sink.Events, 1)
	ev := p.sink.Events[0].(*ValidatorUpdateEvent)
	assert.Equal(t, val, ev.OldValidator)
	assert.Equal(t, newVal, ev.NewValidator)
}

func TestUpdateRewardClaimInterval(t *testing.T) {
	p := newTestPool(t, Options{})
	p.initialize(t)

	assert.ErrorIs(t, p.UpdateRewardClaimInterval(alice, 7200), stakepool.ErrPermissionDenied)
	assert.ErrorIs(t, p.UpdateRewardClaimInterval(admin, stakepool.MinRewardClaimInterval-1), stakepool.ErrInvalidArgument)

	require.NoError(t, p.UpdateRewardClaimInterval(admin, 7200))
}

func TestClaimGate(t *testing.T) {
	p := newTestPool(t, Options{})
	p.initialize(t)
	p.mintBase(t, alice, 1_000_000)
	require.NoError(t, p.Stake(alice, big.NewInt(1_000_000)))
	p.delegator.AccrueReward(val, big.NewInt(1_000_000))

	// gate still closed: a silent no-op, even with rewards pending
	p.clock.T = stakepool.DefaultRewardClaimInterval - 1
	ok, err := p.CanClaimRewards()
	assert.NoError(t, err)
	assert.False(t, ok)

	claimed, err := p.TryClaimRewards(admin)
	assert.NoError(t, err)
	assert.False(t, claimed)

	p.clock.Advance(1)
	ok, err = p.CanClaimRewards()
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestTryClaimRewards(t *testing.T) {
	p := newTestPool(t, Options{})
	p.initialize(t)
	p.mintBase(t, alice, 1_000_000)
	require.NoError(t, p.Stake(alice, big.NewInt(1_000_000)))
	p.delegator.AccrueReward(val, big.NewInt(1_000_000))
	p.clock.T = stakepool.DefaultRewardClaimInterval

	_, err := p.TryClaimRewards(alice)
	assert.ErrorIs(t, err, stakepool.ErrPermissionDenied)

	claimed, err := p.TryClaimRewards(admin)
	require.NoError(t, err)
	assert.True(t, claimed)

	// 10% MEV + 10% protocol to the admin treasury, 80% into the LP bucket
	assert.Equal(t, big.NewInt(200_000), p.balance(t, admin, token.Base))
	assert.Equal(t, big.NewInt(1_800_000), p.balance(t, poolAddr, token.Base))

	pending, err := p.PendingLPRewards(alice)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(800_000), pending)

	// claiming again right away hits the closed gate
	claimed, err = p.TryClaimRewards(admin)
	assert.NoError(t, err)
	assert.False(t, claimed)

	var dist *DistributionEvent
	for _, ev := range p.sink.Events {
		if d, ok := ev.(*DistributionEvent); ok {
			dist = d
		}
	}
	require.NotNil(t, dist)
	assert.Equal(t, big.NewInt(1_000_000), dist.Total)
	assert.Equal(t, big.NewInt(100_000), dist.MEV)
	assert.Equal(t, big.NewInt(100_000), dist.Protocol)
	assert.Equal(t, big.NewInt(800_000), dist.LP)
}

func TestClaimWithoutRewardsFails(t *testing.T) {
	p := newTestPool(t, Options{})
	p.initialize(t)
	p.clock.T = stakepool.DefaultRewardClaimInterval

	_, err := p.TryClaimRewards(admin)
	assert.ErrorIs(t, err, stakepool.ErrInvalidArgument)

	// the failed claim must not mark the gate
	last, lerr := p.ledger.LastRewardClaim()
	assert.NoError(t, lerr)
	assert.Equal(t, uint64(0), last)
}

func TestLPRewardsProportional(t *testing.T) {
	p := newTestPool(t, Options{})
	p.initialize(t)
	p.mintBase(t, alice, 3_000_000)
	p.mintBase(t, bob, 1_000_000)
	require.NoError(t, p.Stake(alice, big.NewInt(3_000_000)))
	require.NoError(t, p.Stake(bob, big.NewInt(1_000_000)))

	p.delegator.AccrueReward(val, big.NewInt(1_000_000))
	p.clock.T = stakepool.DefaultRewardClaimInterval
	claimed, err := p.TryClaimRewards(admin)
	require.NoError(t, err)
	require.True(t, claimed)

	// 800_000 LP share, split 3:1
	amount, err := p.ClaimLPRewards(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(600_000), amount)
	assert.Equal(t, big.NewInt(600_000), p.balance(t, alice, token.Base))

	amount, err = p.ClaimLPRewards(bob)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200_000), amount)

	_, err = p.ClaimLPRewards(bob)
	assert.ErrorIs(t, err, stakepool.ErrInvalidArgument)
}

func TestCompoundRewardsRaiseUnstakeValue(t *testing.T) {
	p := newTestPool(t, Options{CompoundRewards: true})
	p.initialize(t)
	p.mintBase(t, alice, 1_000_000)
	require.NoError(t, p.Stake(alice, big.NewInt(1_000_000)))

	p.delegator.AccrueReward(val, big.NewInt(1_000_000))
	p.clock.T = stakepool.DefaultRewardClaimInterval
	claimed, err := p.TryClaimRewards(admin)
	require.NoError(t, err)
	require.True(t, claimed)

	// 800_000 compounded: 1_800_000 base backs 1_000_000 staked
	total, err := p.TotalStaked()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1_800_000), total)

	rate, err := p.ExchangeRate()
	assert.NoError(t, err)
	assert.Equal(t, uint64(555_555), rate)

	require.NoError(t, p.Unstake(alice, big.NewInt(500_000)))
	assert.Equal(t, big.NewInt(900_000), p.balance(t, alice, token.Base))
}

func TestStakeUnstakeNeverProfits(t *testing.T) {
	p := newTestPool(t, Options{})
	p.initialize(t)

	for _, amount := range []int64{1_000_000, 1_234_567, 99_999_999} {
		staked := big.NewInt(amount)
		p.mintBase(t, bob, amount)
		before := p.balance(t, bob, token.Base)

		require.NoError(t, p.Stake(bob, staked))
		require.NoError(t, p.Unstake(bob, staked))

		after := p.balance(t, bob, token.Base)
		assert.LessOrEqual(t, after.Cmp(before), 0, "amount %d", amount)
	}
}
