// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"github.com/openstake/stakepool/stakepool"
	"github.com/openstake/stakepool/state"
)

// Context binds slot accessors to a contract address and a state instance.
type Context struct {
	address stakepool.Address
	state   *state.State
}

func NewContext(address stakepool.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() stakepool.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
