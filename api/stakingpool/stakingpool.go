// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakingpool

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/openstake/stakepool/api/utils"
	"github.com/openstake/stakepool/pool"
	"github.com/openstake/stakepool/stakepool"
)

// StakingPool exposes the pool state machine over REST.
type StakingPool struct {
	pool *pool.Pool
}

func New(p *pool.Pool) *StakingPool {
	return &StakingPool{p}
}

func amountOrBadRequest(v *math.HexOrDecimal256) (*big.Int, error) {
	if v == nil {
		return nil, utils.BadRequest(errors.New("amount: missing"))
	}
	amount := (*big.Int)(v)
	if amount.Sign() < 0 {
		return nil, utils.BadRequest(errors.New("amount: negative"))
	}
	return amount, nil
}

func (s *StakingPool) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	initialized, err := s.pool.IsInitialized()
	if err != nil {
		return err
	}
	if !initialized {
		return utils.WriteJSON(w, &Status{
			TotalStaked:     (*math.HexOrDecimal256)(new(big.Int)),
			TotalDelegation: (*math.HexOrDecimal256)(new(big.Int)),
		})
	}

	admin, err := s.pool.Admin()
	if err != nil {
		return err
	}
	validator, err := s.pool.Validator()
	if err != nil {
		return err
	}
	operator, err := s.pool.ValidatorOperator()
	if err != nil {
		return err
	}
	rate, err := s.pool.ExchangeRate()
	if err != nil {
		return err
	}
	totalStaked, err := s.pool.TotalStaked()
	if err != nil {
		return err
	}
	totalDelegation, err := s.pool.TotalDelegation()
	if err != nil {
		return err
	}
	unstakingPeriod, err := s.pool.UnstakingPeriod()
	if err != nil {
		return err
	}
	claimable, err := s.pool.CanClaimRewards()
	if err != nil {
		return err
	}

	return utils.WriteJSON(w, &Status{
		Initialized:     true,
		Admin:           &admin,
		Validator:       &validator,
		Operator:        string(operator),
		ExchangeRate:    rate,
		TotalStaked:     (*math.HexOrDecimal256)(totalStaked),
		TotalDelegation: (*math.HexOrDecimal256)(totalDelegation),
		UnstakingPeriod: unstakingPeriod,
		Claimable:       claimable,
	})
}

func (s *StakingPool) handleInitialize(w http.ResponseWriter, req *http.Request) error {
	var body InitializeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.pool.Initialize(body.Admin, body.Validator, []byte(body.Operator)); err != nil {
		return utils.DomainError(err)
	}
	return s.handleGetStatus(w, req)
}

func (s *StakingPool) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body StakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := amountOrBadRequest(body.Amount)
	if err != nil {
		return err
	}
	if err := s.pool.Stake(body.Staker, amount); err != nil {
		return utils.DomainError(err)
	}
	return s.handleGetStatus(w, req)
}

func (s *StakingPool) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	var body StakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := amountOrBadRequest(body.Amount)
	if err != nil {
		return err
	}
	if err := s.pool.Unstake(body.Staker, amount); err != nil {
		return utils.DomainError(err)
	}
	return s.handleGetStatus(w, req)
}

func (s *StakingPool) handleUpdateValidator(w http.ResponseWriter, req *http.Request) error {
	var body ValidatorUpdateRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.pool.UpdateValidator(body.Caller, body.Validator, []byte(body.Operator)); err != nil {
		return utils.DomainError(err)
	}
	return s.handleGetStatus(w, req)
}

func (s *StakingPool) handleUpdateInterval(w http.ResponseWriter, req *http.Request) error {
	var body IntervalUpdateRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.pool.UpdateRewardClaimInterval(body.Caller, body.Interval); err != nil {
		return utils.DomainError(err)
	}
	return s.handleGetStatus(w, req)
}

func (s *StakingPool) handleClaimable(w http.ResponseWriter, _ *http.Request) error {
	claimable, err := s.pool.CanClaimRewards()
	if err != nil {
		return utils.DomainError(err)
	}
	return utils.WriteJSON(w, &ClaimableResponse{Claimable: claimable})
}

func (s *StakingPool) handleClaimRewards(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	claimed, err := s.pool.TryClaimRewards(body.Caller)
	if err != nil {
		return utils.DomainError(err)
	}
	return utils.WriteJSON(w, &ClaimResponse{Claimed: claimed})
}

func (s *StakingPool) handleGetLPPosition(w http.ResponseWriter, req *http.Request) error {
	addr, err := stakepool.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	shares, err := s.pool.LPShares(*addr)
	if err != nil {
		return err
	}
	pending, err := s.pool.PendingLPRewards(*addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &LPPosition{
		Shares:  (*math.HexOrDecimal256)(shares),
		Pending: (*math.HexOrDecimal256)(pending),
	})
}

func (s *StakingPool) handleClaimLPRewards(w http.ResponseWriter, req *http.Request) error {
	var body LPClaimRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := s.pool.ClaimLPRewards(body.Staker)
	if err != nil {
		return utils.DomainError(err)
	}
	return utils.WriteJSON(w, &LPClaimResponse{Amount: (*math.HexOrDecimal256)(amount)})
}

func (s *StakingPool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("pool_get_status").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetStatus))
	sub.Path("/initialize").
		Methods(http.MethodPost).
		Name("pool_initialize").
		HandlerFunc(utils.WrapHandlerFunc(s.handleInitialize))
	sub.Path("/stake").
		Methods(http.MethodPost).
		Name("pool_stake").
		HandlerFunc(utils.WrapHandlerFunc(s.handleStake))
	sub.Path("/unstake").
		Methods(http.MethodPost).
		Name("pool_unstake").
		HandlerFunc(utils.WrapHandlerFunc(s.handleUnstake))
	sub.Path("/validator").
		Methods(http.MethodPost).
		Name("pool_update_validator").
		HandlerFunc(utils.WrapHandlerFunc(s.handleUpdateValidator))
	sub.Path("/reward-interval").
		Methods(http.MethodPost).
		Name("pool_update_reward_interval").
		HandlerFunc(utils.WrapHandlerFunc(s.handleUpdateInterval))
	sub.Path("/rewards/claimable").
		Methods(http.MethodGet).
		Name("pool_get_claimable").
		HandlerFunc(utils.WrapHandlerFunc(s.handleClaimable))
	sub.Path("/rewards/claim").
		Methods(http.MethodPost).
		Name("pool_claim_rewards").
		HandlerFunc(utils.WrapHandlerFunc(s.handleClaimRewards))
	sub.Path("/lp/claim").
		Methods(http.MethodPost).
		Name("pool_claim_lp_rewards").
		HandlerFunc(utils.WrapHandlerFunc(s.handleClaimLPRewards))
	sub.Path("/lp/{address}").
		Methods(http.MethodGet).
		Name("pool_get_lp_position").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetLPPosition))
}
