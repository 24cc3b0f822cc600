// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"bytes"
	"math/big"

	"github.com/pkg/errors"

	"github.com/fleek-platform/fleek-contracts/fleek"
)

// Uint256 is a wrapper for storage and retrieval of an uint256, similar to
// storing an uint256 in a smart contract. Values above 256 bits cannot be
// stored; Set truncates to the 32-byte big-endian representation, callers
// enforce their own overflow policy before storing.
type Uint256 struct {
	context *Context
	pos     fleek.Bytes32
}

func NewUint256(context *Context, slot fleek.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: slot}
}

func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	// Trimming keeps the zero value canonical (nil abs slice), so reads of
	// unset cells compare equal to big.NewInt(0).
	return new(big.Int).SetBytes(bytes.TrimLeft(storage.Bytes(), "\x00")), nil
}

func (u *Uint256) Set(value *big.Int) {
	storage := fleek.BytesToBytes32(value.Bytes())
	u.context.state.SetStorage(u.context.address, u.pos, storage)
}

// Add increases the stored value.
func (u *Uint256) Add(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	storage.Add(storage, value)
	u.Set(storage)
	return nil
}

// Sub decreases the stored value. It fails when the stored value is less
// than the subtrahend, the cell never goes negative.
func (u *Uint256) Sub(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	if storage.Cmp(value) < 0 {
		return errors.New("uint256 underflow")
	}
	storage.Sub(storage, value)
	u.Set(storage)
	return nil
}
