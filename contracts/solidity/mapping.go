// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/fleek-platform/fleek-contracts/fleek"
)

// Key is anything usable as a mapping key.
type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for native contracts, similar
// to a mapping in Solidity. Values are RLP encoded; the zero value is not
// stored (an unset key decodes to the zero value).
type Mapping[K Key, V any] struct {
	context *Context
	basePos fleek.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos fleek.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) fleek.Bytes32 {
	return fleek.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Get loads the value at key. An unset key yields the zero value
// (allocated, for pointer types).
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Set stores the value at key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Clear removes the value at key.
func (m *Mapping[K, V]) Clear(key K) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return nil, nil
	})
}

// Has reports whether key holds a stored value.
func (m *Mapping[K, V]) Has(key K) (has bool, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		has = len(raw) > 0
		return nil
	})
	return
}
