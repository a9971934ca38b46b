// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openstake/stakepool/slot"
	"github.com/openstake/stakepool/stakepool"
	"github.com/openstake/stakepool/state"
)

func newTestIssuer(t *testing.T) *Issuer {
	sctx := slot.NewContext(stakepool.BytesToAddress([]byte("token")), state.New())
	issuer, err := Initialize(sctx)
	assert.NoError(t, err)
	return issuer
}

func TestInitializeOnce(t *testing.T) {
	st := state.New()
	sctx := slot.NewContext(stakepool.BytesToAddress([]byte("token")), st)

	_, err := Initialize(sctx)
	assert.NoError(t, err)

	_, err = Initialize(sctx)
	assert.ErrorIs(t, err, stakepool.ErrAlreadyExists)

	_, err = Load(sctx)
	assert.NoError(t, err)
}

func TestLoadBeforeInitialize(t *testing.T) {
	sctx := slot.NewContext(stakepool.BytesToAddress([]byte("token")), state.New())

	_, err := Load(sctx)
	assert.ErrorIs(t, err, stakepool.ErrNotFound)
}

func TestMetadata(t *testing.T) {
	issuer := newTestIssuer(t)

	meta, err := issuer.GetMetadata(Base)
	assert.NoError(t, err)
	assert.Equal(t, "OST", meta.Symbol)

	meta, err = issuer.GetMetadata(Staked)
	assert.NoError(t, err)
	assert.Equal(t, "stOST", meta.Symbol)
}

func TestMintDeposit(t *testing.T) {
	issuer := newTestIssuer(t)
	staker := stakepool.BytesToAddress([]byte("staker"))

	asset, err := issuer.Mint(issuer.Capabilities(Base).Mint, big.NewInt(500))
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(500), asset.Amount())

	assert.NoError(t, issuer.Deposit(staker, asset))
	assert.True(t, asset.Consumed())

	balance, err := issuer.Balance(staker, Base)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(500), balance)

	supply, err := issuer.TotalSupply(Base)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(500), supply)

	// an asset is single use
	assert.ErrorIs(t, issuer.Deposit(staker, asset), stakepool.ErrInvalidArgument)
}

func TestMintRequiresCapability(t *testing.T) {
	issuer := newTestIssuer(t)
	other := newTestIssuer(t)

	_, err := issuer.Mint(nil, big.NewInt(1))
	assert.ErrorIs(t, err, stakepool.ErrPermissionDenied)

	// a capability from another issuer instance does not carry authority here
	_, err = issuer.Mint(other.Capabilities(Base).Mint, big.NewInt(1))
	assert.ErrorIs(t, err, stakepool.ErrPermissionDenied)
}

func TestZeroMint(t *testing.T) {
	issuer := newTestIssuer(t)
	staker := stakepool.BytesToAddress([]byte("staker"))

	asset, err := issuer.Mint(issuer.Capabilities(Base).Mint, big.NewInt(0))
	assert.NoError(t, err)

	// zero-value assets cannot be deposited, only destroyed
	assert.ErrorIs(t, issuer.Deposit(staker, asset), stakepool.ErrInvalidArgument)
	assert.NoError(t, asset.DestroyZero())
	assert.True(t, asset.Consumed())
}

func TestDestroyNonZero(t *testing.T) {
	issuer := newTestIssuer(t)

	asset, err := issuer.Mint(issuer.Capabilities(Base).Mint, big.NewInt(7))
	assert.NoError(t, err)
	assert.ErrorIs(t, asset.DestroyZero(), stakepool.ErrInvalidArgument)
	assert.False(t, asset.Consumed())
}

func TestBurn(t *testing.T) {
	issuer := newTestIssuer(t)

	asset, err := issuer.Mint(issuer.Capabilities(Staked).Mint, big.NewInt(100))
	assert.NoError(t, err)

	// wrong-kind capability is rejected, asset stays live
	assert.ErrorIs(t, issuer.Burn(issuer.Capabilities(Base).Burn, asset), stakepool.ErrInvalidArgument)
	assert.False(t, asset.Consumed())

	assert.NoError(t, issuer.Burn(issuer.Capabilities(Staked).Burn, asset))
	assert.True(t, asset.Consumed())

	supply, err := issuer.TotalSupply(Staked)
	assert.NoError(t, err)
	assert.Equal(t, 0, supply.Cmp(new(big.Int)))
}

func TestWithdraw(t *testing.T) {
	issuer := newTestIssuer(t)
	staker := stakepool.BytesToAddress([]byte("staker"))

	asset, err := issuer.Mint(issuer.Capabilities(Base).Mint, big.NewInt(50))
	assert.NoError(t, err)
	assert.NoError(t, issuer.Deposit(staker, asset))

	_, err = issuer.Withdraw(staker, Base, big.NewInt(51))
	assert.ErrorIs(t, err, stakepool.ErrInsufficientBalance)

	out, err := issuer.Withdraw(staker, Base, big.NewInt(30))
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(30), out.Amount())

	balance, err := issuer.Balance(staker, Base)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(20), balance)
}

func TestFreeze(t *testing.T) {
	issuer := newTestIssuer(t)
	staker := stakepool.BytesToAddress([]byte("staker"))

	asset, err := issuer.Mint(issuer.Capabilities(Base).Mint, big.NewInt(10))
	assert.NoError(t, err)
	assert.NoError(t, issuer.Deposit(staker, asset))

	assert.NoError(t, issuer.Freeze(issuer.Capabilities(Base).Freeze, staker))

	_, err = issuer.Withdraw(staker, Base, big.NewInt(1))
	assert.ErrorIs(t, err, stakepool.ErrPermissionDenied)

	assert.NoError(t, issuer.Unfreeze(issuer.Capabilities(Base).Freeze, staker))
	_, err = issuer.Withdraw(staker, Base, big.NewInt(1))
	assert.NoError(t, err)
}
