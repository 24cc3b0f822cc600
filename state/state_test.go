// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/lvldb"
)

func newTestState(t *testing.T) (*Stater, *State) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	stater := NewStater(db, 1)
	return stater, stater.NewState()
}

func TestStorageRoundTrip(t *testing.T) {
	_, st := newTestState(t)

	addr := fleek.BytesToAddress([]byte("instance"))
	key := fleek.Blake2b([]byte("slot"))

	// unset slot reads zero
	v, err := st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.True(t, v.IsZero())

	value := fleek.BytesToBytes32([]byte{1, 2, 3})
	st.SetStorage(addr, key, value)

	v, err = st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.Equal(t, value, v)

	// clearing
	st.SetStorage(addr, key, fleek.Bytes32{})
	v, err = st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestCheckpointRevert(t *testing.T) {
	_, st := newTestState(t)

	addr := fleek.BytesToAddress([]byte("instance"))
	key := fleek.Blake2b([]byte("slot"))

	st.SetStorage(addr, key, fleek.BytesToBytes32([]byte{1}))

	cp := st.NewCheckpoint()
	st.SetStorage(addr, key, fleek.BytesToBytes32([]byte{2}))

	v, err := st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.Equal(t, fleek.BytesToBytes32([]byte{2}), v)

	st.RevertTo(cp)

	v, err = st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.Equal(t, fleek.BytesToBytes32([]byte{1}), v)
}

func TestEncodeDecodeStorage(t *testing.T) {
	_, st := newTestState(t)

	addr := fleek.BytesToAddress([]byte("instance"))
	key := fleek.Blake2b([]byte("record"))

	type record struct {
		A uint64
		B []byte
	}
	in := record{42, []byte("payload")}

	err := st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(&in)
	})
	assert.NoError(t, err)

	var out record
	err = st.DecodeStorage(addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &out)
	})
	assert.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestStageCommit(t *testing.T) {
	stater, st := newTestState(t)

	addr := fleek.BytesToAddress([]byte("instance"))
	k1 := fleek.Blake2b([]byte("k1"))
	k2 := fleek.Blake2b([]byte("k2"))

	st.SetStorage(addr, k1, fleek.BytesToBytes32([]byte{1}))
	st.SetStorage(addr, k2, fleek.BytesToBytes32([]byte{2}))

	stage := st.Stage()
	assert.Equal(t, 2, stage.Len())
	require.NoError(t, stage.Commit())

	// a fresh state over the same store sees the committed values
	st2 := stater.NewState()
	v, err := st2.GetStorage(addr, k1)
	assert.NoError(t, err)
	assert.Equal(t, fleek.BytesToBytes32([]byte{1}), v)

	// clear one slot and commit again
	st2.SetStorage(addr, k1, fleek.Bytes32{})
	require.NoError(t, st2.Stage().Commit())

	st3 := stater.NewState()
	v, err = st3.GetStorage(addr, k1)
	assert.NoError(t, err)
	assert.True(t, v.IsZero())
	v, err = st3.GetStorage(addr, k2)
	assert.NoError(t, err)
	assert.Equal(t, fleek.BytesToBytes32([]byte{2}), v)
}

func TestRevertedChangesNotStaged(t *testing.T) {
	stater, st := newTestState(t)

	addr := fleek.BytesToAddress([]byte("instance"))
	key := fleek.Blake2b([]byte("slot"))

	cp := st.NewCheckpoint()
	st.SetStorage(addr, key, fleek.BytesToBytes32([]byte{9}))
	st.RevertTo(cp)

	stage := st.Stage()
	assert.Equal(t, 0, stage.Len())
	require.NoError(t, stage.Commit())

	st2 := stater.NewState()
	v, err := st2.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.True(t, v.IsZero())
}
