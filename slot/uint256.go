// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/openstake/stakepool/stakepool"
)

// Uint256 is a wrapper for storage and retrieval of an unsigned 256-bit integer,
// similar to storing an uint256 in a smart contract.
// If the provided value exceeds 256 bits, it will be truncated to fit into Bytes32.
type Uint256 struct {
	context *Context
	pos     stakepool.Bytes32
}

func NewUint256(context *Context, pos stakepool.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) {
	storage := stakepool.BytesToBytes32(value.Bytes())
	u.context.state.SetStorage(u.context.address, u.pos, storage)
}

func (u *Uint256) Add(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	storage.Add(storage, value)
	u.Set(storage)
	return nil
}

// Sub subtracts value from the stored amount.
// An underflow is rejected, the slot can never hold a negative amount.
func (u *Uint256) Sub(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	if storage.Cmp(value) < 0 {
		return errors.Errorf("slot underflow: have %v, sub %v", storage, value)
	}
	storage.Sub(storage, value)
	u.Set(storage)
	return nil
}
