// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package client provides an HTTP client for the staking pool API, used by
// tooling and the claim scheduler.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/openstake/stakepool/api/stakingpool"
	"github.com/openstake/stakepool/stakepool"
)

var ErrNot200Status = errors.New("not 200 status code")

// Client talks to a running pool node over its REST API.
type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: url,
		c:   c,
	}
}

func (c *Client) httpRequest(method, url string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error - Status Code %d - %s - %w", resp.StatusCode, responseBody, ErrNot200Status)
	}
	return responseBody, nil
}

func (c *Client) httpGET(url string) ([]byte, error) {
	return c.httpRequest(http.MethodGet, url, nil)
}

func (c *Client) httpPOST(url string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal payload - %w", err)
	}
	return c.httpRequest(http.MethodPost, url, bytes.NewBuffer(data))
}

// Status retrieves the aggregate pool view.
func (c *Client) Status() (*stakingpool.Status, error) {
	body, err := c.httpGET(c.url + "/pool")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve pool status - %w", err)
	}

	var status stakingpool.Status
	if err = json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("unable to unmarshal pool status - %w", err)
	}
	return &status, nil
}

// Initialize creates the pool record.
func (c *Client) Initialize(admin, validator stakepool.Address, operator string) (*stakingpool.Status, error) {
	body, err := c.httpPOST(c.url+"/pool/initialize", &stakingpool.InitializeRequest{
		Admin:     admin,
		Validator: validator,
		Operator:  operator,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to initialize pool - %w", err)
	}

	var status stakingpool.Status
	if err = json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("unable to unmarshal pool status - %w", err)
	}
	return &status, nil
}

// Stake delegates base tokens and mints the derivative for the staker.
func (c *Client) Stake(staker stakepool.Address, amount *big.Int) (*stakingpool.Status, error) {
	return c.postStakeOp("/pool/stake", staker, amount)
}

// Unstake burns derivative tokens and releases the converted base amount.
func (c *Client) Unstake(staker stakepool.Address, amount *big.Int) (*stakingpool.Status, error) {
	return c.postStakeOp("/pool/unstake", staker, amount)
}

func (c *Client) postStakeOp(path string, staker stakepool.Address, amount *big.Int) (*stakingpool.Status, error) {
	body, err := c.httpPOST(c.url+path, &stakingpool.StakeRequest{
		Staker: staker,
		Amount: (*math.HexOrDecimal256)(amount),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to post %s - %w", path, err)
	}

	var status stakingpool.Status
	if err = json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("unable to unmarshal pool status - %w", err)
	}
	return &status, nil
}

// Claimable reports whether the reward claim gate is open.
func (c *Client) Claimable() (bool, error) {
	body, err := c.httpGET(c.url + "/pool/rewards/claimable")
	if err != nil {
		return false, fmt.Errorf("unable to retrieve claimable - %w", err)
	}

	var res stakingpool.ClaimableResponse
	if err = json.Unmarshal(body, &res); err != nil {
		return false, fmt.Errorf("unable to unmarshal claimable - %w", err)
	}
	return res.Claimable, nil
}

// ClaimRewards triggers a reward claim and distribution on behalf of caller.
func (c *Client) ClaimRewards(caller stakepool.Address) (bool, error) {
	body, err := c.httpPOST(c.url+"/pool/rewards/claim", &stakingpool.ClaimRequest{Caller: caller})
	if err != nil {
		return false, fmt.Errorf("unable to claim rewards - %w", err)
	}

	var res stakingpool.ClaimResponse
	if err = json.Unmarshal(body, &res); err != nil {
		return false, fmt.Errorf("unable to unmarshal claim response - %w", err)
	}
	return res.Claimed, nil
}

// LPPosition retrieves a staker's LP reward position.
func (c *Client) LPPosition(staker stakepool.Address) (*stakingpool.LPPosition, error) {
	body, err := c.httpGET(c.url + "/pool/lp/" + staker.String())
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve LP position - %w", err)
	}

	var pos stakingpool.LPPosition
	if err = json.Unmarshal(body, &pos); err != nil {
		return nil, fmt.Errorf("unable to unmarshal LP position - %w", err)
	}
	return &pos, nil
}

// ClaimLPRewards pays out the staker's accrued LP rewards.
func (c *Client) ClaimLPRewards(staker stakepool.Address) (*big.Int, error) {
	body, err := c.httpPOST(c.url+"/pool/lp/claim", &stakingpool.LPClaimRequest{Staker: staker})
	if err != nil {
		return nil, fmt.Errorf("unable to claim LP rewards - %w", err)
	}

	var res stakingpool.LPClaimResponse
	if err = json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("unable to unmarshal LP claim response - %w", err)
	}
	return (*big.Int)(res.Amount), nil
}

// UpdateValidator replaces the pool's delegation target.
func (c *Client) UpdateValidator(caller, validator stakepool.Address, operator string) (*stakingpool.Status, error) {
	body, err := c.httpPOST(c.url+"/pool/validator", &stakingpool.ValidatorUpdateRequest{
		Caller:    caller,
		Validator: validator,
		Operator:  operator,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to update validator - %w", err)
	}

	var status stakingpool.Status
	if err = json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("unable to unmarshal pool status - %w", err)
	}
	return &status, nil
}

// UpdateRewardInterval updates the reward-claim gate interval.
func (c *Client) UpdateRewardInterval(caller stakepool.Address, interval uint64) (*stakingpool.Status, error) {
	body, err := c.httpPOST(c.url+"/pool/reward-interval", &stakingpool.IntervalUpdateRequest{
		Caller:   caller,
		Interval: interval,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to update reward interval - %w", err)
	}

	var status stakingpool.Status
	if err = json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("unable to unmarshal pool status - %w", err)
	}
	return &status, nil
}
