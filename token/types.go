// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

// Kind identifies one of the two token kinds managed by the issuer.
type Kind uint8

const (
	// Base is the underlying staked currency.
	Base Kind = iota
	// Staked is the liquid receipt token representing a claim on staked base-token value.
	Staked
)

func (k Kind) String() string {
	switch k {
	case Base:
		return "OST"
	case Staked:
		return "stOST"
	default:
		return "unknown"
	}
}

// Bytes returns the byte form of the kind, used for storage key derivation.
func (k Kind) Bytes() []byte {
	return []byte{byte(k)}
}

// Metadata describes a token kind.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// MintCapability authorizes minting of one token kind. It is created exactly
// once per kind at issuer initialization and cannot be forged outside this
// package.
type MintCapability struct {
	issuer *Issuer
	kind   Kind
}

// BurnCapability authorizes burning of one token kind.
type BurnCapability struct {
	issuer *Issuer
	kind   Kind
}

// FreezeCapability authorizes freezing accounts of one token kind.
type FreezeCapability struct {
	issuer *Issuer
	kind   Kind
}

// CapabilitySet groups the capabilities of one token kind.
type CapabilitySet struct {
	Mint   *MintCapability
	Burn   *BurnCapability
	Freeze *FreezeCapability
}
