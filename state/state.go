// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the cause of the error.
func (e *Error) Unwrap() error {
	return e.cause
}

// storageKey locates one storage slot of a contract instance.
type storageKey struct {
	addr fleek.Address
	key  fleek.Bytes32
}

// slotReader reads committed raw slot values.
type slotReader interface {
	read(k storageKey) ([]byte, error)
}

// State manages the ledger state: raw storage slots addressed by
// (instance address, key), with checkpoint/revert semantics. All mutations
// are buffered until staged; a failed operation reverts to its checkpoint
// and leaves no trace.
type State struct {
	reader slotReader
	sm     *stackedmap.StackedMap
}

func newState(reader slotReader) *State {
	st := &State{reader: reader}
	st.sm = stackedmap.New(func(key any) (any, bool, error) {
		raw, err := reader.read(key.(storageKey))
		if err != nil {
			return nil, false, &Error{err}
		}
		// an absent slot reads as empty, it always "exists"
		return raw, true, nil
	})
	st.sm.Push() // base level, so puts work without an explicit checkpoint
	return st
}

// NewCheckpoint makes a checkpoint of the current state.
// It returns the checkpoint to be passed to RevertTo.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts the state to the given checkpoint.
// All changes made after the checkpoint are discarded.
func (s *State) RevertTo(checkpoint int) {
	s.sm.PopTo(checkpoint)
}

// GetRawStorage returns the raw encoded value of the slot.
// Empty value means the slot is unset.
func (s *State) GetRawStorage(addr fleek.Address, key fleek.Bytes32) ([]byte, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// SetRawStorage sets the raw encoded value of the slot.
// Empty value clears the slot.
func (s *State) SetRawStorage(addr fleek.Address, key fleek.Bytes32, raw []byte) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns the slot value interpreted as Bytes32.
func (s *State) GetStorage(addr fleek.Address, key fleek.Bytes32) (fleek.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return fleek.Bytes32{}, err
	}
	if len(raw) == 0 {
		return fleek.Bytes32{}, nil
	}
	_, content, _, err := rlp.Split(raw)
	if err != nil {
		return fleek.Bytes32{}, &Error{err}
	}
	return fleek.BytesToBytes32(content), nil
}

// SetStorage sets the slot value as Bytes32. Zero value clears the slot.
func (s *State) SetStorage(addr fleek.Address, key fleek.Bytes32, value fleek.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	trimmed, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, trimmed)
}

// DecodeStorage decodes the raw slot value with the decodeFn.
// decodeFn receives an empty slice when the slot is unset.
func (s *State) DecodeStorage(addr fleek.Address, key fleek.Bytes32, decodeFn func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := decodeFn(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// EncodeStorage encodes the slot value with the encodeFn and stores it.
// encodeFn returning an empty slice clears the slot.
func (s *State) EncodeStorage(addr fleek.Address, key fleek.Bytes32, encodeFn func() ([]byte, error)) error {
	raw, err := encodeFn()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// Stage collects all changes made so far into a commit stage.
// The state remains usable afterwards, but committing the stage makes
// further changes on this instance undefined; start from a fresh state.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey][]byte)
	s.sm.Journal(func(k, v any) bool {
		changes[k.(storageKey)] = v.([]byte)
		return true
	})
	return &Stage{
		changes: changes,
		reader:  s.reader,
	}
}

// Stage a set of slot changes ready to be committed atomically.
type Stage struct {
	changes map[storageKey][]byte
	reader  slotReader
}

// Len returns the count of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Commit writes all changes to the backing store atomically.
func (s *Stage) Commit() error {
	committer, ok := s.reader.(slotCommitter)
	if !ok {
		return &Error{errReadOnly}
	}
	return committer.commit(s.changes)
}
