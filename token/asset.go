// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/openstake/stakepool/stakepool"
)

// Asset is a bearer value holding a quantity of one token kind.
// An asset must end its life in exactly one of Deposit, Burn or DestroyZero;
// any other use after that fails. Dropping an unconsumed asset loses value.
type Asset struct {
	kind     Kind
	amount   *big.Int
	consumed bool
}

func newAsset(kind Kind, amount *big.Int) *Asset {
	return &Asset{kind: kind, amount: new(big.Int).Set(amount)}
}

// Kind returns the token kind of the asset.
func (a *Asset) Kind() Kind {
	return a.kind
}

// Amount returns the quantity held by the asset.
func (a *Asset) Amount() *big.Int {
	return new(big.Int).Set(a.amount)
}

// Consumed reports whether the asset has reached a terminal operation.
func (a *Asset) Consumed() bool {
	return a.consumed
}

// consume marks the asset spent. Double spends are rejected.
func (a *Asset) consume() error {
	if a.consumed {
		return errors.WithMessage(stakepool.ErrInvalidArgument, "asset already consumed")
	}
	a.consumed = true
	return nil
}

// DestroyZero disposes of a zero-value asset. Destroying a non-zero asset
// would lose value and is rejected.
func (a *Asset) DestroyZero() error {
	if a.amount.Sign() != 0 {
		return errors.WithMessagef(stakepool.ErrInvalidArgument, "cannot destroy non-zero asset of %v %v", a.amount, a.kind)
	}
	return a.consume()
}
