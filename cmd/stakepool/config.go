// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/openstake/stakepool/stakepool"
)

// Config seeds the solo pool instance: the pool record plus dev account
// balances, comparable to a dev genesis.
type Config struct {
	Admin     string `yaml:"admin"`
	Validator string `yaml:"validator"`
	Operator  string `yaml:"operator"`

	RewardClaimInterval uint64 `yaml:"rewardClaimInterval"`
	UnstakingPeriod     uint64 `yaml:"unstakingPeriod"`

	Accounts []AccountConfig `yaml:"accounts"`
}

// AccountConfig is a dev account funded with base tokens at startup.
type AccountConfig struct {
	Address string `yaml:"address"`
	Balance string `yaml:"balance"`
}

func defaultConfig() *Config {
	return &Config{
		Admin:     "0x0000000000000000000000000000000000616d69", // "ami"
		Validator: "0x00000000000000000000000000000000000076a1",
		Operator:  "solo-operator",
	}
}

func loadConfig(path string) (*Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, errors.WithMessage(err, "read config")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WithMessage(err, "parse config")
	}
	return &cfg, nil
}

func (c *Config) adminAddress() (*stakepool.Address, error) {
	addr, err := stakepool.ParseAddress(c.Admin)
	return addr, errors.WithMessage(err, "admin")
}

func (c *Config) validatorAddress() (*stakepool.Address, error) {
	addr, err := stakepool.ParseAddress(c.Validator)
	return addr, errors.WithMessage(err, "validator")
}

func (a *AccountConfig) parse() (*stakepool.Address, *big.Int, error) {
	addr, err := stakepool.ParseAddress(a.Address)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "account address")
	}
	balance, ok := new(big.Int).SetString(a.Balance, 10)
	if !ok || balance.Sign() < 0 {
		return nil, nil, errors.Errorf("account balance: invalid amount %q", a.Balance)
	}
	return addr, balance, nil
}
