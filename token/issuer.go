// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/openstake/stakepool/slot"
	"github.com/openstake/stakepool/stakepool"
)

var (
	initKey = stakepool.Blake2b([]byte("token-initialized"))

	initialized = stakepool.BytesToBytes32([]byte{1})
)

func metadataKey(kind Kind) stakepool.Bytes32 {
	return stakepool.Blake2b([]byte("token-metadata"), kind.Bytes())
}

func totalMintedKey(kind Kind) stakepool.Bytes32 {
	return stakepool.Blake2b([]byte("token-total-minted"), kind.Bytes())
}

func totalBurnedKey(kind Kind) stakepool.Bytes32 {
	return stakepool.Blake2b([]byte("token-total-burned"), kind.Bytes())
}

func accountKey(addr stakepool.Address, kind Kind) stakepool.Bytes32 {
	return stakepool.Blake2b([]byte("a"), addr.Bytes(), kind.Bytes())
}

func frozenKey(addr stakepool.Address, kind Kind) stakepool.Bytes32 {
	return stakepool.Blake2b([]byte("f"), addr.Bytes(), kind.Bytes())
}

// Issuer mints and burns the base and staked token kinds and keeps the ledger
// balances of both. Mint and burn authority is carried by capability handles
// created exactly once by Initialize and held by the issuer's own storage.
type Issuer struct {
	sctx *slot.Context
	caps map[Kind]*CapabilitySet
}

func defaultMetadata() map[Kind]*Metadata {
	return map[Kind]*Metadata{
		Base:   {Name: "OpenStake Token", Symbol: "OST", Decimals: 6},
		Staked: {Name: "Staked OpenStake Token", Symbol: "stOST", Decimals: 6},
	}
}

func newIssuer(sctx *slot.Context) *Issuer {
	issuer := &Issuer{sctx: sctx, caps: make(map[Kind]*CapabilitySet)}
	for _, kind := range []Kind{Base, Staked} {
		issuer.caps[kind] = &CapabilitySet{
			Mint:   &MintCapability{issuer: issuer, kind: kind},
			Burn:   &BurnCapability{issuer: issuer, kind: kind},
			Freeze: &FreezeCapability{issuer: issuer, kind: kind},
		}
	}
	return issuer
}

// Initialize creates the token module: registers metadata for both kinds and
// mints the capability sets. Fails with an already-exists error when run twice.
func Initialize(sctx *slot.Context) (*Issuer, error) {
	flag, err := sctx.State().GetStorage(sctx.Address(), initKey)
	if err != nil {
		return nil, err
	}
	if !flag.IsZero() {
		return nil, errors.WithMessage(stakepool.ErrAlreadyExists, "token module initialized")
	}
	sctx.State().SetStorage(sctx.Address(), initKey, initialized)

	for kind, meta := range defaultMetadata() {
		if err := sctx.State().EncodeStorage(sctx.Address(), metadataKey(kind), func() ([]byte, error) {
			return rlp.EncodeToBytes(meta)
		}); err != nil {
			return nil, err
		}
	}
	return newIssuer(sctx), nil
}

// Load binds an issuer to an already initialized token module.
// Calling it before Initialize is a fatal precondition failure.
func Load(sctx *slot.Context) (*Issuer, error) {
	flag, err := sctx.State().GetStorage(sctx.Address(), initKey)
	if err != nil {
		return nil, err
	}
	if flag.IsZero() {
		return nil, errors.WithMessage(stakepool.ErrNotFound, "token module not initialized")
	}
	return newIssuer(sctx), nil
}

// Capabilities returns the capability set of the given kind.
// This is the only accessor through which mint/burn authority leaves the issuer.
func (i *Issuer) Capabilities(kind Kind) *CapabilitySet {
	return i.caps[kind]
}

// GetMetadata returns the metadata of a token kind.
func (i *Issuer) GetMetadata(kind Kind) (*Metadata, error) {
	var meta *Metadata
	err := i.sctx.State().DecodeStorage(i.sctx.Address(), metadataKey(kind), func(raw []byte) error {
		if len(raw) == 0 {
			return errors.WithMessagef(stakepool.ErrNotFound, "no metadata for kind %v", kind)
		}
		meta = new(Metadata)
		return rlp.DecodeBytes(raw, meta)
	})
	return meta, err
}

// Mint creates a fresh bearer asset of exactly amount units.
// A zero amount is legal and produces a zero-value asset that must later be
// explicitly destroyed, not deposited.
func (i *Issuer) Mint(cap *MintCapability, amount *big.Int) (*Asset, error) {
	if cap == nil || cap.issuer != i {
		return nil, errors.WithMessage(stakepool.ErrPermissionDenied, "mint capability required")
	}
	if amount.Sign() < 0 {
		return nil, errors.WithMessage(stakepool.ErrInvalidArgument, "negative mint amount")
	}
	if err := slot.NewUint256(i.sctx, totalMintedKey(cap.kind)).Add(amount); err != nil {
		return nil, err
	}
	return newAsset(cap.kind, amount), nil
}

// Burn consumes a bearer asset, destroying its value.
// The asset's kind must match the capability's kind.
func (i *Issuer) Burn(cap *BurnCapability, asset *Asset) error {
	if cap == nil || cap.issuer != i {
		return errors.WithMessage(stakepool.ErrPermissionDenied, "burn capability required")
	}
	if asset.Kind() != cap.kind {
		return errors.WithMessagef(stakepool.ErrInvalidArgument, "cannot burn %v with %v capability", asset.Kind(), cap.kind)
	}
	if err := asset.consume(); err != nil {
		return err
	}
	return slot.NewUint256(i.sctx, totalBurnedKey(cap.kind)).Add(asset.Amount())
}

// TotalSupply returns outstanding units of a kind (minted minus burned).
func (i *Issuer) TotalSupply(kind Kind) (*big.Int, error) {
	minted, err := slot.NewUint256(i.sctx, totalMintedKey(kind)).Get()
	if err != nil {
		return nil, err
	}
	burned, err := slot.NewUint256(i.sctx, totalBurnedKey(kind)).Get()
	if err != nil {
		return nil, err
	}
	return minted.Sub(minted, burned), nil
}

// Balance returns the ledger balance of an account.
func (i *Issuer) Balance(account stakepool.Address, kind Kind) (*big.Int, error) {
	return slot.NewUint256(i.sctx, accountKey(account, kind)).Get()
}

// Withdraw debits the principal's ledger balance and hands the value out as a
// bearer asset.
func (i *Issuer) Withdraw(principal stakepool.Address, kind Kind, amount *big.Int) (*Asset, error) {
	if frozen, err := i.IsFrozen(principal, kind); err != nil {
		return nil, err
	} else if frozen {
		return nil, errors.WithMessagef(stakepool.ErrPermissionDenied, "account %v frozen for %v", principal, kind)
	}
	balance := slot.NewUint256(i.sctx, accountKey(principal, kind))
	if err := balance.Sub(amount); err != nil {
		return nil, errors.WithMessagef(stakepool.ErrInsufficientBalance, "withdraw %v %v from %v", amount, kind, principal)
	}
	return newAsset(kind, amount), nil
}

// Deposit consumes a bearer asset and credits the account's ledger balance.
// Zero-value assets must be destroyed instead.
func (i *Issuer) Deposit(account stakepool.Address, asset *Asset) error {
	if asset.Amount().Sign() == 0 {
		return errors.WithMessage(stakepool.ErrInvalidArgument, "zero-value asset must be destroyed, not deposited")
	}
	if frozen, err := i.IsFrozen(account, asset.Kind()); err != nil {
		return err
	} else if frozen {
		return errors.WithMessagef(stakepool.ErrPermissionDenied, "account %v frozen for %v", account, asset.Kind())
	}
	if err := asset.consume(); err != nil {
		return err
	}
	return slot.NewUint256(i.sctx, accountKey(account, asset.kind)).Add(asset.amount)
}

// Freeze blocks deposits and withdrawals of the capability's kind for an account.
func (i *Issuer) Freeze(cap *FreezeCapability, account stakepool.Address) error {
	if cap == nil || cap.issuer != i {
		return errors.WithMessage(stakepool.ErrPermissionDenied, "freeze capability required")
	}
	i.sctx.State().SetStorage(i.sctx.Address(), frozenKey(account, cap.kind), initialized)
	return nil
}

// Unfreeze lifts a freeze.
func (i *Issuer) Unfreeze(cap *FreezeCapability, account stakepool.Address) error {
	if cap == nil || cap.issuer != i {
		return errors.WithMessage(stakepool.ErrPermissionDenied, "freeze capability required")
	}
	i.sctx.State().SetStorage(i.sctx.Address(), frozenKey(account, cap.kind), stakepool.Bytes32{})
	return nil
}

// IsFrozen reports whether an account is frozen for a kind.
func (i *Issuer) IsFrozen(account stakepool.Address, kind Kind) (bool, error) {
	flag, err := i.sctx.State().GetStorage(i.sctx.Address(), frozenKey(account, kind))
	if err != nil {
		return false, err
	}
	return !flag.IsZero(), nil
}
