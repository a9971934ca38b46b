// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/openstake/stakepool/log"
	"github.com/openstake/stakepool/metrics"
	"github.com/openstake/stakepool/pool/ledger"
	"github.com/openstake/stakepool/pool/rewards"
	"github.com/openstake/stakepool/slot"
	"github.com/openstake/stakepool/stakepool"
	"github.com/openstake/stakepool/state"
	"github.com/openstake/stakepool/token"
	"github.com/openstake/stakepool/validator"
)

var logger = log.WithContext("pkg", "pool")

var (
	metricStakes      = metrics.LazyLoadCounter("pool_stake_count")
	metricUnstakes    = metrics.LazyLoadCounter("pool_unstake_count")
	metricClaims      = metrics.LazyLoadCounter("pool_reward_claim_count")
	metricTotalStaked = metrics.LazyLoadGauge("pool_total_staked_gauge")
)

// Options tune pool behavior.
type Options struct {
	// CompoundRewards routes the LP reward share into the exchange rate
	// instead of the per-staker ledger. Off by default, keeping the
	// derivative pegged 1:1 to the base token.
	CompoundRewards bool

	// RewardClaimInterval overrides the claim interval set at initialization.
	RewardClaimInterval uint64

	// UnstakingPeriod is the undelegation settlement period, in seconds.
	UnstakingPeriod uint64
}

// Pool is the liquid-staking pool state machine. All mutating operations are
// all-or-nothing: they run inside a state checkpoint and revert on any error,
// including failures of the external validator calls.
type Pool struct {
	st        *state.State
	addr      stakepool.Address
	issuer    *token.Issuer
	delegator validator.Delegator
	clock     Clock
	events    EventSink
	opts      Options

	ledger   *ledger.Service
	lpLedger *rewards.Service
}

// New creates a pool bound to the given state. The pool account addr holds
// the base-token backing and the undistributed LP bucket.
func New(
	addr stakepool.Address,
	st *state.State,
	issuer *token.Issuer,
	delegator validator.Delegator,
	clock Clock,
	events EventSink,
	opts Options,
) *Pool {
	sctx := slot.NewContext(addr, st)
	if clock == nil {
		clock = SystemClock()
	}
	if events == nil {
		events = NopSink()
	}
	return &Pool{
		st:        st,
		addr:      addr,
		issuer:    issuer,
		delegator: delegator,
		clock:     clock,
		events:    events,
		opts:      opts,

		ledger:   ledger.New(sctx),
		lpLedger: rewards.New(sctx),
	}
}

// run executes fn inside a state checkpoint, reverting every write when fn
// fails. This is what makes each entry point all-or-nothing.
func (p *Pool) run(fn func() error) error {
	cp := p.st.NewCheckpoint()
	if err := fn(); err != nil {
		p.st.RevertTo(cp)
		return err
	}
	return nil
}

func (p *Pool) requireInitialized() error {
	ok, err := p.ledger.IsInitialized()
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithMessage(stakepool.ErrNotFound, "pool not initialized")
	}
	return nil
}

func (p *Pool) requireAdmin(caller stakepool.Address) error {
	admin, err := p.ledger.Admin()
	if err != nil {
		return err
	}
	if caller != admin {
		return errors.WithMessagef(stakepool.ErrPermissionDenied, "caller %v is not the pool admin", caller)
	}
	return nil
}

// Initialize creates the pool record owned by admin, delegating to validator.
// Fails when the pool already exists.
func (p *Pool) Initialize(admin, validator stakepool.Address, operator []byte) error {
	return p.run(func() error {
		if validator.IsZero() {
			return errors.WithMessage(stakepool.ErrInvalidArgument, "zero validator")
		}
		interval := p.opts.RewardClaimInterval
		if interval == 0 {
			interval = stakepool.DefaultRewardClaimInterval
		}
		if interval < stakepool.MinRewardClaimInterval {
			return errors.WithMessagef(stakepool.ErrInvalidArgument, "claim interval %d below minimum %d", interval, stakepool.MinRewardClaimInterval)
		}
		if err := p.ledger.Initialize(admin, validator, operator, interval, p.opts.UnstakingPeriod); err != nil {
			return err
		}
		logger.Info("pool initialized", "admin", admin, "validator", validator)
		return nil
	})
}

// Stake delegates amount base tokens to the pool's validator and mints the
// same amount of staked tokens to the staker. The derivative is minted at
// face value; conversion through the exchange rate applies on unstake only.
func (p *Pool) Stake(staker stakepool.Address, amount *big.Int) error {
	err := p.run(func() error {
		if err := p.requireInitialized(); err != nil {
			return err
		}
		if amount.Cmp(stakepool.MinimumStake) < 0 {
			return errors.WithMessagef(stakepool.ErrInvalidArgument, "stake %v below minimum %v", amount, stakepool.MinimumStake)
		}
		if amount.Cmp(stakepool.MaximumStake) > 0 {
			return errors.WithMessagef(stakepool.ErrInvalidArgument, "stake %v above maximum %v", amount, stakepool.MaximumStake)
		}
		total, err := p.ledger.TotalStaked()
		if err != nil {
			return err
		}
		if new(big.Int).Add(total, amount).Cmp(stakepool.TotalStakeCeiling) > 0 {
			return errors.WithMessagef(stakepool.ErrOverflow, "stake %v would exceed pool ceiling %v", amount, stakepool.TotalStakeCeiling)
		}

		val, err := p.ledger.Validator()
		if err != nil {
			return err
		}

		// move the backing into the pool account
		backing, err := p.issuer.Withdraw(staker, token.Base, amount)
		if err != nil {
			return err
		}
		if err := p.issuer.Deposit(p.addr, backing); err != nil {
			return err
		}

		// external call, aborts the whole operation on failure
		if err := p.delegator.Delegate(staker, token.Base, val, amount); err != nil {
			return errors.WithMessage(err, "delegate")
		}

		minted, err := p.issuer.Mint(p.issuer.Capabilities(token.Staked).Mint, amount)
		if err != nil {
			return err
		}
		if err := p.issuer.Deposit(staker, minted); err != nil {
			return err
		}

		if err := p.ledger.AddStaked(amount); err != nil {
			return err
		}
		if err := p.ledger.AddDelegation(amount); err != nil {
			return err
		}
		if err := p.lpLedger.AddShares(staker, amount); err != nil {
			return err
		}

		p.events.Emit(&StakeEvent{Staker: staker, Amount: new(big.Int).Set(amount), Validator: val})
		logger.Debug("stake", "staker", staker, "amount", amount, "validator", val)
		return nil
	})
	if err == nil {
		metricStakes().Add(1)
		if total, terr := p.ledger.TotalStaked(); terr == nil {
			metricTotalStaked().Set(total.Int64())
		}
	}
	return err
}

// Unstake burns amount staked tokens from the staker and releases the
// converted base-token amount: floor(amount * scale / rate).
func (p *Pool) Unstake(staker stakepool.Address, amount *big.Int) error {
	err := p.run(func() error {
		if err := p.requireInitialized(); err != nil {
			return err
		}
		if amount.Sign() <= 0 {
			return errors.WithMessage(stakepool.ErrInvalidArgument, "unstake amount must be positive")
		}

		rate, err := p.ledger.ExchangeRate()
		if err != nil {
			return err
		}
		unstakeAmount := new(big.Int).Mul(amount, new(big.Int).SetUint64(stakepool.ExchangeRateScale))
		unstakeAmount.Quo(unstakeAmount, new(big.Int).SetUint64(rate))

		if unstakeAmount.Sign() == 0 {
			return errors.WithMessagef(stakepool.ErrInvalidArgument, "unstake %v converts to nothing", amount)
		}
		total, err := p.ledger.TotalStaked()
		if err != nil {
			return err
		}
		if unstakeAmount.Cmp(total) > 0 {
			return errors.WithMessagef(stakepool.ErrInsufficientBalance, "unstake %v exceeds staked total %v", unstakeAmount, total)
		}

		val, err := p.ledger.Validator()
		if err != nil {
			return err
		}

		burned, err := p.issuer.Withdraw(staker, token.Staked, amount)
		if err != nil {
			return err
		}
		if err := p.issuer.Burn(p.issuer.Capabilities(token.Staked).Burn, burned); err != nil {
			return err
		}

		// external call, aborts the whole operation on failure
		if err := p.delegator.Undelegate(staker, token.Base, val, unstakeAmount); err != nil {
			return errors.WithMessage(err, "undelegate")
		}

		released, err := p.issuer.Withdraw(p.addr, token.Base, unstakeAmount)
		if err != nil {
			return err
		}
		if err := p.issuer.Deposit(staker, released); err != nil {
			return err
		}

		if err := p.ledger.SubStaked(unstakeAmount); err != nil {
			return err
		}
		if err := p.ledger.SubDelegation(unstakeAmount); err != nil {
			return err
		}
		// Shares mirror the derivative units the staker minted here; stOST
		// received through transfers carries no LP share, so remove at most
		// what this staker holds.
		shares, err := p.lpLedger.Shares(staker)
		if err != nil {
			return err
		}
		removed := amount
		if shares.Cmp(removed) < 0 {
			removed = shares
		}
		if removed.Sign() > 0 {
			if err := p.lpLedger.RemoveShares(staker, removed); err != nil {
				return err
			}
		}

		p.events.Emit(&UnstakeEvent{Staker: staker, UnstakeAmount: unstakeAmount, Validator: val})
		logger.Debug("unstake", "staker", staker, "burned", amount, "released", unstakeAmount)
		return nil
	})
	if err == nil {
		metricUnstakes().Add(1)
		if total, terr := p.ledger.TotalStaked(); terr == nil {
			metricTotalStaked().Set(total.Int64())
		}
	}
	return err
}

// UpdateValidator replaces the delegation target. Funds already delegated are
// not migrated; redelegation is handled out of band.
func (p *Pool) UpdateValidator(caller, newValidator stakepool.Address, newOperator []byte) error {
	return p.run(func() error {
		if err := p.requireInitialized(); err != nil {
			return err
		}
		if err := p.requireAdmin(caller); err != nil {
			return err
		}
		if newValidator.IsZero() {
			return errors.WithMessage(stakepool.ErrInvalidArgument, "zero validator")
		}
		oldValidator, err := p.ledger.Validator()
		if err != nil {
			return err
		}
		oldOperator, err := p.ledger.Operator()
		if err != nil {
			return err
		}
		p.ledger.SetValidator(newValidator, newOperator)

		p.events.Emit(&ValidatorUpdateEvent{
			OldValidator: oldValidator,
			OldOperator:  oldOperator,
			NewValidator: newValidator,
			NewOperator:  newOperator,
		})
		logger.Info("validator updated", "old", oldValidator, "new", newValidator)
		return nil
	})
}

// UpdateRewardClaimInterval updates the reward-claim gate interval.
func (p *Pool) UpdateRewardClaimInterval(caller stakepool.Address, interval uint64) error {
	return p.run(func() error {
		if err := p.requireInitialized(); err != nil {
			return err
		}
		if err := p.requireAdmin(caller); err != nil {
			return err
		}
		return p.ledger.SetClaimInterval(interval)
	})
}

// CanClaimRewards reports whether the claim gate is open.
func (p *Pool) CanClaimRewards() (bool, error) {
	if err := p.requireInitialized(); err != nil {
		return false, err
	}
	return p.ledger.CanClaim(p.clock.Now())
}

// TryClaimRewards claims pending validator rewards and distributes them.
// When the claim gate is still closed it returns (false, nil): a silent
// no-op, so a scheduler can poll without error noise. The claimed batch is
// split by the fixed MEV/protocol/LP ratios; floor-division dust is dropped.
func (p *Pool) TryClaimRewards(caller stakepool.Address) (bool, error) {
	claimed := false
	err := p.run(func() error {
		if err := p.requireInitialized(); err != nil {
			return err
		}
		if err := p.requireAdmin(caller); err != nil {
			return err
		}
		now := p.clock.Now()
		ok, err := p.ledger.CanClaim(now)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		val, err := p.ledger.Validator()
		if err != nil {
			return err
		}
		// external call, aborts the whole operation on failure
		reward, err := p.delegator.ClaimReward(caller, token.Base, val)
		if err != nil {
			return errors.WithMessage(err, "claim reward")
		}
		if reward.Sign() == 0 {
			return errors.WithMessage(stakepool.ErrInvalidArgument, "no rewards to distribute")
		}

		split := rewards.ComputeSplit(reward)
		admin, err := p.ledger.Admin()
		if err != nil {
			return err
		}

		mintCap := p.issuer.Capabilities(token.Base).Mint
		for _, share := range []*big.Int{split.MEV, split.Protocol} {
			if share.Sign() == 0 {
				continue
			}
			asset, err := p.issuer.Mint(mintCap, share)
			if err != nil {
				return err
			}
			if err := p.issuer.Deposit(admin, asset); err != nil {
				return err
			}
		}

		if split.LP.Sign() > 0 {
			if err := p.distributeToLPs(split.LP, mintCap); err != nil {
				return err
			}
		}

		p.ledger.SetLastRewardClaim(now)
		claimed = true

		p.events.Emit(&DistributionEvent{
			Total:     reward,
			MEV:       split.MEV,
			Protocol:  split.Protocol,
			LP:        split.LP,
			Timestamp: now,
		})
		logger.Info("rewards distributed",
			"total", reward, "mev", split.MEV, "protocol", split.Protocol, "lp", split.LP)
		return nil
	})
	if err != nil {
		return false, err
	}
	if claimed {
		metricClaims().Add(1)
	}
	return claimed, nil
}

// distributeToLPs routes the LP share. Default: credit the proportional share
// ledger and park the value in the pool account until stakers claim it. With
// compounding on, the share instead raises the exchange rate, so unstakes pay
// out the yield. With nothing staked there is nobody to pay and the share is
// dropped unminted.
func (p *Pool) distributeToLPs(lpShare *big.Int, mintCap *token.MintCapability) error {
	total, err := p.ledger.TotalStaked()
	if err != nil {
		return err
	}
	if total.Sign() == 0 {
		logger.Warn("no stakers, dropping LP reward share", "amount", lpShare)
		return nil
	}

	if p.opts.CompoundRewards {
		asset, err := p.issuer.Mint(mintCap, lpShare)
		if err != nil {
			return err
		}
		if err := p.issuer.Deposit(p.addr, asset); err != nil {
			return err
		}
		if err := p.ledger.AddStaked(lpShare); err != nil {
			return err
		}
		supply, err := p.issuer.TotalSupply(token.Staked)
		if err != nil {
			return err
		}
		if supply.Sign() == 0 {
			return nil
		}
		backing, err := p.ledger.TotalStaked()
		if err != nil {
			return err
		}
		// rate counts derivative units per scaled base unit, so appreciation
		// pushes it below scale and unstakes pay out more than they burn.
		rate := new(big.Int).Mul(supply, new(big.Int).SetUint64(stakepool.ExchangeRateScale))
		rate.Quo(rate, backing)
		return p.ledger.SetExchangeRate(rate.Uint64())
	}

	distributed, err := p.lpLedger.Distribute(lpShare)
	if err != nil {
		return err
	}
	if !distributed {
		return nil
	}
	asset, err := p.issuer.Mint(mintCap, lpShare)
	if err != nil {
		return err
	}
	return p.issuer.Deposit(p.addr, asset)
}

// ClaimLPRewards pays out the staker's accrued LP reward share from the pool
// account.
func (p *Pool) ClaimLPRewards(staker stakepool.Address) (*big.Int, error) {
	var amount *big.Int
	err := p.run(func() error {
		if err := p.requireInitialized(); err != nil {
			return err
		}
		claimed, err := p.lpLedger.Claim(staker)
		if err != nil {
			return err
		}
		if claimed.Sign() == 0 {
			return errors.WithMessage(stakepool.ErrInvalidArgument, "no rewards to claim")
		}
		asset, err := p.issuer.Withdraw(p.addr, token.Base, claimed)
		if err != nil {
			return err
		}
		if err := p.issuer.Deposit(staker, asset); err != nil {
			return err
		}
		amount = claimed
		p.events.Emit(&LPClaimEvent{Staker: staker, Amount: claimed})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// PendingLPRewards returns the staker's claimable LP reward amount.
func (p *Pool) PendingLPRewards(staker stakepool.Address) (*big.Int, error) {
	return p.lpLedger.Pending(staker)
}

// LPShares returns the staker's share of the LP reward stream.
func (p *Pool) LPShares(staker stakepool.Address) (*big.Int, error) {
	return p.lpLedger.Shares(staker)
}

//
// Read-only queries
//

// IsInitialized reports whether the pool record exists.
func (p *Pool) IsInitialized() (bool, error) {
	return p.ledger.IsInitialized()
}

// ExchangeRate returns the scaled base:derivative conversion ratio.
func (p *Pool) ExchangeRate() (uint64, error) {
	return p.ledger.ExchangeRate()
}

// TotalStaked returns the base-token amount backing outstanding staked tokens.
func (p *Pool) TotalStaked() (*big.Int, error) {
	return p.ledger.TotalStaked()
}

// TotalDelegation returns the amount delegated to the validator.
func (p *Pool) TotalDelegation() (*big.Int, error) {
	return p.ledger.TotalDelegation()
}

// Validator returns the current delegation target.
func (p *Pool) Validator() (stakepool.Address, error) {
	return p.ledger.Validator()
}

// ValidatorOperator returns the validator operator handle.
func (p *Pool) ValidatorOperator() ([]byte, error) {
	return p.ledger.Operator()
}

// UnstakingPeriod returns the undelegation settlement period, in seconds.
func (p *Pool) UnstakingPeriod() (uint64, error) {
	return p.ledger.UnstakingPeriod()
}

// Admin returns the pool owner.
func (p *Pool) Admin() (stakepool.Address, error) {
	return p.ledger.Admin()
}

// LastRewardClaim returns the unix timestamp of the last successful claim,
// zero if none happened yet.
func (p *Pool) LastRewardClaim() (uint64, error) {
	return p.ledger.LastRewardClaim()
}

// RewardClaimInterval returns the claim gate interval, in seconds.
func (p *Pool) RewardClaimInterval() (uint64, error) {
	return p.ledger.ClaimInterval()
}

// Issuer exposes the token issuer for balance queries.
func (p *Pool) Issuer() *token.Issuer {
	return p.issuer
}
