// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accrual

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleek-platform/fleek-contracts/contracts/reverts"
	"github.com/fleek-platform/fleek-contracts/contracts/solidity"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/lvldb"
	"github.com/fleek-platform/fleek-contracts/state"
)

var alice = fleek.BytesToAddress([]byte("alice"))

func newTestService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.NewStater(db, 1).NewState()
	return New(solidity.NewContext(fleek.InstanceAddress("pool", "test"), st))
}

// scale multiplies n by 1e18.
func scale(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), fleek.RewardScale)
}

func TestRewardPerTokenGrowth(t *testing.T) {
	svc := newTestService(t)

	rate := big.NewInt(10)
	total := big.NewInt(100)

	// nothing staked: the accumulator stays put regardless of elapsed time
	index, err := svc.RewardPerToken(1_000, rate, big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0), index)

	// 50 seconds at 10/s over 100 staked units = 5 per unit
	index, err = svc.RewardPerToken(50, rate, total)
	require.NoError(t, err)
	assert.Equal(t, scale(5), index)

	// the view does not advance bookkeeping
	last, err := svc.LastUpdateTime()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), last)
}

func TestCheckpointFreezes(t *testing.T) {
	svc := newTestService(t)

	rate := big.NewInt(10)
	total := big.NewInt(100)

	index, err := svc.Checkpoint(50, rate, total)
	require.NoError(t, err)
	assert.Equal(t, scale(5), index)

	last, err := svc.LastUpdateTime()
	require.NoError(t, err)
	assert.Equal(t, uint64(50), last)

	// same instant again: no double counting
	index, err = svc.Checkpoint(50, rate, total)
	require.NoError(t, err)
	assert.Equal(t, scale(5), index)

	// another 50 seconds with the total doubled grows it by 2.5 per unit
	index, err = svc.Checkpoint(100, rate, new(big.Int).Mul(total, big.NewInt(2)))
	require.NoError(t, err)
	expected := new(big.Int).Add(scale(5), new(big.Int).Div(scale(5), big.NewInt(2)))
	assert.Equal(t, expected, index)
}

func TestEarnedAndClaim(t *testing.T) {
	svc := newTestService(t)

	rate := big.NewInt(10)
	total := big.NewInt(100)
	balance := big.NewInt(40)

	index, err := svc.Checkpoint(50, rate, total)
	require.NoError(t, err)

	// 40 units of a 100-unit pool earn 40% of 500
	earned, err := svc.Earned(alice, balance, index)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200), earned)

	require.NoError(t, svc.SettleAccount(alice, balance, index))

	// settling is idempotent at a fixed index
	earned, err = svc.Earned(alice, balance, index)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200), earned)

	claimed, err := svc.ClaimReward(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200), claimed)

	// nothing left afterwards
	claimed, err = svc.ClaimReward(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0), claimed)

	earned, err = svc.Earned(alice, balance, index)
	require.NoError(t, err)
	assert.Zero(t, earned.Sign())
}

func TestSettleKeepsPaidMark(t *testing.T) {
	svc := newTestService(t)

	rate := big.NewInt(10)
	total := big.NewInt(100)
	balance := big.NewInt(100)

	index, err := svc.Checkpoint(10, rate, total)
	require.NoError(t, err)
	require.NoError(t, svc.SettleAccount(alice, balance, index))

	claimed, err := svc.ClaimReward(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), claimed)

	// further accrual only counts growth past the paid mark
	index, err = svc.Checkpoint(20, rate, total)
	require.NoError(t, err)

	earned, err := svc.Earned(alice, balance, index)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), earned)
}

func TestAccumulatorOverflow(t *testing.T) {
	svc := newTestService(t)

	huge := new(big.Int).Set(math.MaxBig256)

	_, err := svc.RewardPerToken(2, huge, big.NewInt(1))
	assert.ErrorIs(t, err, reverts.ErrOverflow)

	_, err = svc.Checkpoint(2, huge, big.NewInt(1))
	assert.ErrorIs(t, err, reverts.ErrOverflow)
}
