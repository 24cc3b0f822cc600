// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"

	"github.com/fleek-platform/fleek-contracts/fleek"
)

// Uint64 is a storage cell holding an uint64, used for timestamps and
// durations.
type Uint64 struct {
	context *Context
	pos     fleek.Bytes32
}

func NewUint64(context *Context, slot fleek.Bytes32) *Uint64 {
	return &Uint64{context: context, pos: slot}
}

func (u *Uint64) Get() (uint64, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(storage[24:]), nil
}

func (u *Uint64) Set(value uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], value)
	u.context.state.SetStorage(u.context.address, u.pos, fleek.BytesToBytes32(b[:]))
}
