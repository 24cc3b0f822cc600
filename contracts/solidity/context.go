// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solidity provides storage cells for native contracts, mirroring
// how ported Solidity contracts lay out their state: values live in
// 32-byte slots of a contract address, mappings derive slots by hashing
// the key with the declaration position.
package solidity

import (
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/state"
)

// Context binds storage cells to a contract instance.
type Context struct {
	address fleek.Address
	state   *state.State
}

func NewContext(address fleek.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() fleek.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
