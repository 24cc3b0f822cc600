// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package params implements the governed key/value registry. Besides free-form
// numeric parameters it keeps the per-pool pause flags consulted before any
// intake operation.
package params

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/fleek-platform/fleek-contracts/contracts/solidity"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/state"
)

// Params binds the registry at the given instance address.
type Params struct {
	context *solidity.Context
}

func New(addr fleek.Address, st *state.State) *Params {
	return &Params{solidity.NewContext(addr, st)}
}

// Get retrieves the value bound to the given key. Unset keys read as zero.
func (p *Params) Get(key fleek.Bytes32) (*big.Int, error) {
	var v big.Int
	if err := p.context.State().DecodeStorage(p.context.Address(), key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &v)
	}); err != nil {
		return nil, err
	}
	return &v, nil
}

// Set binds the value to the given key. Setting zero releases the slot.
func (p *Params) Set(key fleek.Bytes32, value *big.Int) error {
	return p.context.State().EncodeStorage(p.context.Address(), key, func() ([]byte, error) {
		if value.Sign() == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(value)
	})
}

// IsPaused reports whether intake is suspended for the given pool.
func (p *Params) IsPaused(pool fleek.Address) (bool, error) {
	v, err := p.Get(fleek.PauseKey(pool))
	if err != nil {
		return false, err
	}
	return v.Sign() != 0, nil
}

// SetPaused suspends or resumes intake for the given pool.
func (p *Params) SetPaused(pool fleek.Address, paused bool) error {
	v := new(big.Int)
	if paused {
		v.SetInt64(1)
	}
	return p.Set(fleek.PauseKey(pool), v)
}
