// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/openstake/stakepool/slot"
	"github.com/openstake/stakepool/stakepool"
)

var (
	slotInitialized     = stakepool.BytesToBytes32([]byte("pool-initialized"))
	slotAdmin           = stakepool.BytesToBytes32([]byte("pool-admin"))
	slotTotalStaked     = stakepool.BytesToBytes32([]byte("total-staked"))
	slotTotalDelegation = stakepool.BytesToBytes32([]byte("total-delegation"))
	slotExchangeRate    = stakepool.BytesToBytes32([]byte("exchange-rate"))
	slotValidator       = stakepool.BytesToBytes32([]byte("validator"))
	slotOperator        = stakepool.BytesToBytes32([]byte("validator-operator"))
	slotLastClaim       = stakepool.BytesToBytes32([]byte("last-reward-claim"))
	slotClaimInterval   = stakepool.BytesToBytes32([]byte("claim-interval"))
	slotUnstakingPeriod = stakepool.BytesToBytes32([]byte("unstaking-period"))
)

// Service owns the singleton pool record: stake and delegation totals, the
// exchange rate and the reward-claim gate. Totals are guarded against
// underflow, and the exchange rate can only change through SetExchangeRate.
type Service struct {
	sctx *slot.Context

	initialized     *slot.Uint64
	admin           *slot.Address
	totalStaked     *slot.Uint256
	totalDelegation *slot.Uint256
	exchangeRate    *slot.Uint64
	validator       *slot.Address
	operator        *slot.Bytes
	lastClaim       *slot.Uint64
	claimInterval   *slot.Uint64
	unstakingPeriod *slot.Uint64
}

func New(sctx *slot.Context) *Service {
	return &Service{
		sctx: sctx,

		initialized:     slot.NewUint64(sctx, slotInitialized),
		admin:           slot.NewAddress(sctx, slotAdmin),
		totalStaked:     slot.NewUint256(sctx, slotTotalStaked),
		totalDelegation: slot.NewUint256(sctx, slotTotalDelegation),
		exchangeRate:    slot.NewUint64(sctx, slotExchangeRate),
		validator:       slot.NewAddress(sctx, slotValidator),
		operator:        slot.NewBytes(sctx, slotOperator),
		lastClaim:       slot.NewUint64(sctx, slotLastClaim),
		claimInterval:   slot.NewUint64(sctx, slotClaimInterval),
		unstakingPeriod: slot.NewUint64(sctx, slotUnstakingPeriod),
	}
}

// IsInitialized reports whether the pool record exists.
func (s *Service) IsInitialized() (bool, error) {
	v, err := s.initialized.Get()
	return v != 0, err
}

// Initialize creates the pool record at a 1:1 exchange rate.
func (s *Service) Initialize(admin, validator stakepool.Address, operator []byte, claimInterval, unstakingPeriod uint64) error {
	ok, err := s.IsInitialized()
	if err != nil {
		return err
	}
	if ok {
		return errors.WithMessage(stakepool.ErrAlreadyExists, "pool initialized")
	}
	s.initialized.Set(1)
	s.admin.Set(admin)
	s.validator.Set(validator)
	s.operator.Set(operator)
	s.exchangeRate.Set(stakepool.ExchangeRateScale)
	s.claimInterval.Set(claimInterval)
	s.unstakingPeriod.Set(unstakingPeriod)
	return nil
}

// Admin returns the pool owner.
func (s *Service) Admin() (stakepool.Address, error) {
	return s.admin.Get()
}

// TotalStaked returns the base-token amount backing outstanding staked tokens.
func (s *Service) TotalStaked() (*big.Int, error) {
	return s.totalStaked.Get()
}

// AddStaked increases the staked total.
func (s *Service) AddStaked(amount *big.Int) error {
	return s.totalStaked.Add(amount)
}

// SubStaked decreases the staked total; underflow is rejected.
func (s *Service) SubStaked(amount *big.Int) error {
	if err := s.totalStaked.Sub(amount); err != nil {
		return errors.WithMessage(stakepool.ErrInsufficientBalance, err.Error())
	}
	return nil
}

// TotalDelegation returns the amount currently delegated to the validator.
func (s *Service) TotalDelegation() (*big.Int, error) {
	return s.totalDelegation.Get()
}

// AddDelegation increases the delegation total.
func (s *Service) AddDelegation(amount *big.Int) error {
	return s.totalDelegation.Add(amount)
}

// SubDelegation decreases the delegation total; underflow is rejected.
func (s *Service) SubDelegation(amount *big.Int) error {
	if err := s.totalDelegation.Sub(amount); err != nil {
		return errors.WithMessage(stakepool.ErrInsufficientBalance, err.Error())
	}
	return nil
}

// ExchangeRate returns the scaled base:derivative conversion ratio.
func (s *Service) ExchangeRate() (uint64, error) {
	return s.exchangeRate.Get()
}

// SetExchangeRate is the single update point of the exchange rate.
// A zero rate would make unstake division undefined and is rejected.
func (s *Service) SetExchangeRate(rate uint64) error {
	if rate == 0 {
		return errors.WithMessage(stakepool.ErrInvalidArgument, "exchange rate must be positive")
	}
	s.exchangeRate.Set(rate)
	return nil
}

// Validator returns the current delegation target.
func (s *Service) Validator() (stakepool.Address, error) {
	return s.validator.Get()
}

// Operator returns the validator operator handle.
func (s *Service) Operator() ([]byte, error) {
	return s.operator.Get()
}

// SetValidator replaces the delegation target.
func (s *Service) SetValidator(validator stakepool.Address, operator []byte) {
	s.validator.Set(validator)
	s.operator.Set(operator)
}

// LastRewardClaim returns the timestamp of the last successful claim.
func (s *Service) LastRewardClaim() (uint64, error) {
	return s.lastClaim.Get()
}

// SetLastRewardClaim records a successful claim.
func (s *Service) SetLastRewardClaim(ts uint64) {
	s.lastClaim.Set(ts)
}

// ClaimInterval returns the minimum gap between reward claims, in seconds.
func (s *Service) ClaimInterval() (uint64, error) {
	return s.claimInterval.Get()
}

// SetClaimInterval updates the claim interval; the floor guards against
// claim spam.
func (s *Service) SetClaimInterval(interval uint64) error {
	if interval < stakepool.MinRewardClaimInterval {
		return errors.WithMessagef(stakepool.ErrInvalidArgument, "claim interval %d below minimum %d", interval, stakepool.MinRewardClaimInterval)
	}
	s.claimInterval.Set(interval)
	return nil
}

// UnstakingPeriod returns the undelegation settlement period, in seconds.
func (s *Service) UnstakingPeriod() (uint64, error) {
	return s.unstakingPeriod.Get()
}

// CanClaim reports whether the claim gate is open at the given time.
func (s *Service) CanClaim(now uint64) (bool, error) {
	last, err := s.lastClaim.Get()
	if err != nil {
		return false, err
	}
	interval, err := s.claimInterval.Get()
	if err != nil {
		return false, err
	}
	return now >= last+interval, nil
}
