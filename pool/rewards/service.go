// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/openstake/stakepool/slot"
	"github.com/openstake/stakepool/stakepool"
)

var (
	slotAccPerToken = stakepool.BytesToBytes32([]byte("lp-acc-per-token"))
	slotTotalShares = stakepool.BytesToBytes32([]byte("lp-total-shares"))
	slotPositions   = stakepool.BytesToBytes32([]byte("lp-positions"))
)

// position is one staker's share of the LP reward stream.
// RewardDebt snapshots the accumulator at the last share change, Accrued holds
// rewards settled but not yet claimed.
type position struct {
	Shares     *big.Int
	RewardDebt *big.Int
	Accrued    *big.Int
}

func (p *position) normalize() {
	if p.Shares == nil {
		p.Shares = new(big.Int)
	}
	if p.RewardDebt == nil {
		p.RewardDebt = new(big.Int)
	}
	if p.Accrued == nil {
		p.Accrued = new(big.Int)
	}
}

func (p *position) isEmpty() bool {
	return p.Shares.Sign() == 0 && p.Accrued.Sign() == 0
}

// Service keeps the per-staker proportional reward ledger for the LP bucket.
// Rewards are spread with a scaled reward-per-token accumulator; each share
// change settles the staker's pending amount first, so the ordering of stake,
// unstake and distribution calls never changes anyone's payout.
type Service struct {
	accPerToken *slot.Uint256
	totalShares *slot.Uint256
	positions   *slot.Mapping[stakepool.Address, *position]
}

func New(sctx *slot.Context) *Service {
	return &Service{
		accPerToken: slot.NewUint256(sctx, slotAccPerToken),
		totalShares: slot.NewUint256(sctx, slotTotalShares),
		positions:   slot.NewMapping[stakepool.Address, *position](sctx, slotPositions),
	}
}

func (s *Service) getPosition(staker stakepool.Address) (*position, error) {
	pos, err := s.positions.Get(staker)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		pos = &position{}
	}
	pos.normalize()
	return pos, nil
}

func (s *Service) setPosition(staker stakepool.Address, pos *position) error {
	if pos.isEmpty() {
		s.positions.Delete(staker)
		return nil
	}
	return s.positions.Set(staker, pos)
}

// owed returns shares*acc/scale for the current accumulator.
func owed(shares, acc *big.Int) *big.Int {
	v := new(big.Int).Mul(shares, acc)
	return v.Quo(v, new(big.Int).SetUint64(stakepool.RewardPerTokenScale))
}

// settle folds the staker's pending amount into Accrued and refreshes the debt
// snapshot. Must run before every share change.
func (s *Service) settle(pos *position) error {
	acc, err := s.accPerToken.Get()
	if err != nil {
		return err
	}
	total := owed(pos.Shares, acc)
	pending := new(big.Int).Sub(total, pos.RewardDebt)
	if pending.Sign() > 0 {
		pos.Accrued.Add(pos.Accrued, pending)
	}
	pos.RewardDebt = total
	return nil
}

// AddShares grows a staker's share on stake.
func (s *Service) AddShares(staker stakepool.Address, amount *big.Int) error {
	pos, err := s.getPosition(staker)
	if err != nil {
		return err
	}
	if err := s.settle(pos); err != nil {
		return err
	}
	pos.Shares.Add(pos.Shares, amount)

	acc, err := s.accPerToken.Get()
	if err != nil {
		return err
	}
	pos.RewardDebt = owed(pos.Shares, acc)

	if err := s.totalShares.Add(amount); err != nil {
		return err
	}
	return s.setPosition(staker, pos)
}

// RemoveShares shrinks a staker's share on unstake.
func (s *Service) RemoveShares(staker stakepool.Address, amount *big.Int) error {
	pos, err := s.getPosition(staker)
	if err != nil {
		return err
	}
	if err := s.settle(pos); err != nil {
		return err
	}
	if pos.Shares.Cmp(amount) < 0 {
		return errors.WithMessagef(stakepool.ErrInsufficientBalance, "remove %v shares from %v", amount, staker)
	}
	pos.Shares.Sub(pos.Shares, amount)

	acc, err := s.accPerToken.Get()
	if err != nil {
		return err
	}
	pos.RewardDebt = owed(pos.Shares, acc)

	if err := s.totalShares.Sub(amount); err != nil {
		return errors.WithMessage(stakepool.ErrInsufficientBalance, err.Error())
	}
	return s.setPosition(staker, pos)
}

// TotalShares returns the sum of all staker shares.
func (s *Service) TotalShares() (*big.Int, error) {
	return s.totalShares.Get()
}

// Distribute spreads an LP reward batch across all current shares by raising
// the reward-per-token accumulator. With no shares outstanding there is nobody
// to pay and the call reports false.
func (s *Service) Distribute(amount *big.Int) (bool, error) {
	total, err := s.totalShares.Get()
	if err != nil {
		return false, err
	}
	if total.Sign() == 0 {
		return false, nil
	}
	delta := new(big.Int).Mul(amount, new(big.Int).SetUint64(stakepool.RewardPerTokenScale))
	delta.Quo(delta, total)
	if err := s.accPerToken.Add(delta); err != nil {
		return false, err
	}
	return true, nil
}

// Pending returns the staker's claimable LP reward amount.
func (s *Service) Pending(staker stakepool.Address) (*big.Int, error) {
	pos, err := s.getPosition(staker)
	if err != nil {
		return nil, err
	}
	acc, err := s.accPerToken.Get()
	if err != nil {
		return nil, err
	}
	pending := new(big.Int).Sub(owed(pos.Shares, acc), pos.RewardDebt)
	if pending.Sign() < 0 {
		pending.SetInt64(0)
	}
	return pending.Add(pending, pos.Accrued), nil
}

// Claim settles and zeroes the staker's accrued rewards, returning the amount
// to pay out. The caller moves the actual value.
func (s *Service) Claim(staker stakepool.Address) (*big.Int, error) {
	pos, err := s.getPosition(staker)
	if err != nil {
		return nil, err
	}
	if err := s.settle(pos); err != nil {
		return nil, err
	}
	amount := pos.Accrued
	pos.Accrued = new(big.Int)
	if err := s.setPosition(staker, pos); err != nil {
		return nil, err
	}
	return amount, nil
}

// Shares returns the staker's current share amount.
func (s *Service) Shares(staker stakepool.Address) (*big.Int, error) {
	pos, err := s.getPosition(staker)
	if err != nil {
		return nil, err
	}
	return pos.Shares, nil
}
