// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/state"
)

// Context binds storage wrappers to a contract address within a state.
type Context struct {
	address pledge.Address
	state   *state.State
}

func NewContext(address pledge.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() pledge.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// Slot derives a storage position from a name.
func Slot(name string) pledge.Bytes32 {
	return pledge.BytesToBytes32([]byte(name))
}
