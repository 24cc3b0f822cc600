// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package schedule

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleek-platform/fleek-contracts/contracts/reverts"
	"github.com/fleek-platform/fleek-contracts/contracts/solidity"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/lvldb"
	"github.com/fleek-platform/fleek-contracts/state"
)

const day = uint64(86400)

func newTestService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.NewStater(db, 1).NewState()
	return New(solidity.NewContext(fleek.InstanceAddress("pool", "test"), st))
}

// tokens converts n whole tokens into base units.
func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func TestNotifyStartsPeriod(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.InitDuration(90*day))

	rate, err := svc.Notify(tokens(90_000), tokens(90_000), 0)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Div(tokens(90_000), new(big.Int).SetUint64(90*day)), rate)

	finish, err := svc.PeriodFinish()
	require.NoError(t, err)
	assert.Equal(t, 90*day, finish)

	stored, err := svc.RewardRate()
	require.NoError(t, err)
	assert.Equal(t, rate, stored)
}

func TestNotifyCarriesLeftover(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.InitDuration(90*day))

	rate1, err := svc.Notify(tokens(90_000), tokens(90_000), 0)
	require.NoError(t, err)

	// halfway through, top up with 45000: the undistributed half of the
	// first funding folds into the new rate
	now := 45 * day
	rate2, err := svc.Notify(tokens(45_000), tokens(135_000), now)
	require.NoError(t, err)

	leftover := new(big.Int).Mul(new(big.Int).SetUint64(45*day), rate1)
	expected := new(big.Int).Add(tokens(45_000), leftover)
	expected.Div(expected, new(big.Int).SetUint64(90*day))
	assert.Equal(t, expected, rate2)

	finish, err := svc.PeriodFinish()
	require.NoError(t, err)
	assert.Equal(t, now+90*day, finish)
}

func TestNotifyAfterPeriodIgnoresOldRate(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.InitDuration(10*day))

	_, err := svc.Notify(tokens(100), tokens(100), 0)
	require.NoError(t, err)

	// period long over: no leftover to carry
	rate, err := svc.Notify(tokens(50), tokens(150), 20*day)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Div(tokens(50), new(big.Int).SetUint64(10*day)), rate)
}

func TestNotifyValidation(t *testing.T) {
	svc := newTestService(t)

	// duration not seeded yet
	_, err := svc.Notify(tokens(1), tokens(1), 0)
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)

	require.NoError(t, svc.InitDuration(10*day))

	_, err = svc.Notify(big.NewInt(0), tokens(1), 0)
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)

	// funding far beyond what the pool holds
	_, err = svc.Notify(tokens(100), tokens(50), 0)
	assert.ErrorIs(t, err, reverts.ErrRateTooHigh)

	// a rejected funding leaves the schedule untouched
	finish, err := svc.PeriodFinish()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), finish)
}

func TestSetDurationGating(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.InitDuration(10*day))

	_, err := svc.Notify(tokens(100), tokens(100), 0)
	require.NoError(t, err)

	// mid-period and at the exact end: locked
	err = svc.SetDuration(5*day, 5*day)
	assert.ErrorIs(t, err, reverts.ErrDurationLocked)

	err = svc.SetDuration(5*day, 10*day)
	assert.ErrorIs(t, err, reverts.ErrDurationLocked)

	// strictly after the end: allowed
	require.NoError(t, svc.SetDuration(5*day, 10*day+1))

	duration, err := svc.Duration()
	require.NoError(t, err)
	assert.Equal(t, 5*day, duration)

	// zero duration is never valid
	err = svc.SetDuration(0, 20*day)
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)
}

func TestLastApplicable(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.InitDuration(10*day))

	// no funding yet: nothing is applicable
	last, err := svc.LastApplicable(5 * day)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), last)

	_, err = svc.Notify(tokens(100), tokens(100), 0)
	require.NoError(t, err)

	last, err = svc.LastApplicable(5 * day)
	require.NoError(t, err)
	assert.Equal(t, 5*day, last)

	last, err = svc.LastApplicable(15 * day)
	require.NoError(t, err)
	assert.Equal(t, 10*day, last)
}
