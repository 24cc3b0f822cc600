// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/lvldb"
	"github.com/fleek-platform/fleek-contracts/state"
)

func newTestParams(t *testing.T) *Params {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.NewStater(db, 1).NewState()
	return New(fleek.InstanceAddress("params", "test"), st)
}

func TestParamsGetSet(t *testing.T) {
	p := newTestParams(t)

	key := fleek.BytesToBytes32([]byte("key"))

	v, err := p.Get(key)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0), v)

	require.NoError(t, p.Set(key, big.NewInt(10)))

	v, err = p.Get(key)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), v)

	require.NoError(t, p.Set(key, big.NewInt(0)))

	v, err = p.Get(key)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0), v)
}

func TestPauseFlag(t *testing.T) {
	p := newTestParams(t)

	pool := fleek.InstanceAddress("pool", "main")
	other := fleek.InstanceAddress("pool", "other")

	paused, err := p.IsPaused(pool)
	require.NoError(t, err)
	assert.False(t, paused)

	require.NoError(t, p.SetPaused(pool, true))

	paused, err = p.IsPaused(pool)
	require.NoError(t, err)
	assert.True(t, paused)

	// flags are scoped per pool
	paused, err = p.IsPaused(other)
	require.NoError(t, err)
	assert.False(t, paused)

	require.NoError(t, p.SetPaused(pool, false))

	paused, err = p.IsPaused(pool)
	require.NoError(t, err)
	assert.False(t, paused)
}
