// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"github.com/openstake/stakepool/stakepool"
)

// Bytes is a wrapper for storage and retrieval of an arbitrary byte string.
type Bytes struct {
	context *Context
	pos     stakepool.Bytes32
}

func NewBytes(context *Context, pos stakepool.Bytes32) *Bytes {
	return &Bytes{context: context, pos: pos}
}

func (b *Bytes) Get() ([]byte, error) {
	return b.context.state.GetRawStorage(b.context.address, b.pos)
}

func (b *Bytes) Set(value []byte) {
	b.context.state.SetRawStorage(b.context.address, b.pos, value)
}
