// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gate

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

var alice = fleek.BytesToAddress([]byte("alice"))

func newTestContext(t *testing.T) *solidity.Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.NewStater(db, 1).NewState()
	return solidity.NewContext(fleek.InstanceAddress("pool", "test"), st)
}

func TestNewGate(t *testing.T) {
	sctx := newTestContext(t)

	g, err := New(sctx, KindPostStakeLock, 100)
	require.NoError(t, err)
	assert.Equal(t, KindPostStakeLock, g.Kind())

	g, err = New(sctx, KindPostRequestCooldown, 100)
	require.NoError(t, err)
	assert.Equal(t, KindPostRequestCooldown, g.Kind())

	_, err = New(sctx, "linear-vesting", 100)
	assert.Error(t, err)
}

func TestPostStakeLock(t *testing.T) {
	g := NewPostStakeLock(newTestContext(t), 100)

	require.NoError(t, g.RecordStake(alice, 50))

	err := g.CheckWithdraw(alice, 149)
	assert.ErrorIs(t, err, reverts.ErrStillLocked)

	// the boundary instant is already unlocked
	assert.NoError(t, g.CheckWithdraw(alice, 150))

	// a top-up re-locks the whole balance
	require.NoError(t, g.RecordStake(alice, 160))
	err = g.CheckWithdraw(alice, 200)
	assert.ErrorIs(t, err, reverts.ErrStillLocked)
	assert.NoError(t, g.CheckWithdraw(alice, 260))

	status, err := g.Status(alice)
	require.NoError(t, err)
	assert.Equal(t, &Status{Kind: KindPostStakeLock, UnlockTime: 260}, status)
}

func TestPostStakeLockRefusesRequests(t *testing.T) {
	g := NewPostStakeLock(newTestContext(t), 100)

	err := g.RecordRequest(alice, big.NewInt(1), big.NewInt(1), 0)
	assert.ErrorIs(t, err, reverts.ErrUnsupported)

	_, err = g.ResolveRequest(alice, 0)
	assert.ErrorIs(t, err, reverts.ErrUnsupported)
}

func TestPostRequestCooldown(t *testing.T) {
	g := NewPostRequestCooldown(newTestContext(t), 100)

	// nothing requested yet
	_, err := g.ResolveRequest(alice, 1_000)
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)

	require.NoError(t, g.RecordRequest(alice, big.NewInt(30), big.NewInt(50), 10))

	_, err = g.ResolveRequest(alice, 109)
	assert.ErrorIs(t, err, reverts.ErrCooldownNotElapsed)

	status, err := g.Status(alice)
	require.NoError(t, err)
	assert.Equal(t, &Status{
		Kind:        KindPostRequestCooldown,
		Requested:   big.NewInt(30),
		RequestedAt: 10,
		ClaimableAt: 110,
	}, status)

	amount, err := g.ResolveRequest(alice, 110)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(30), amount)

	// consumed: a second resolve finds nothing
	_, err = g.ResolveRequest(alice, 111)
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)
}

func TestPostRequestCooldownOverwrite(t *testing.T) {
	g := NewPostRequestCooldown(newTestContext(t), 100)

	require.NoError(t, g.RecordRequest(alice, big.NewInt(30), big.NewInt(50), 10))

	// a fresh request replaces amount and restarts the clock
	require.NoError(t, g.RecordRequest(alice, big.NewInt(40), big.NewInt(50), 60))

	_, err := g.ResolveRequest(alice, 110)
	assert.ErrorIs(t, err, reverts.ErrCooldownNotElapsed)

	amount, err := g.ResolveRequest(alice, 160)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(40), amount)
}

func TestPostRequestCooldownValidation(t *testing.T) {
	g := NewPostRequestCooldown(newTestContext(t), 100)

	err := g.RecordRequest(alice, big.NewInt(0), big.NewInt(50), 0)
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)

	err = g.RecordRequest(alice, big.NewInt(51), big.NewInt(50), 0)
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)

	// direct withdrawals are not part of this policy
	err = g.CheckWithdraw(alice, 0)
	assert.ErrorIs(t, err, reverts.ErrUnsupported)

	// staking never disturbs a pending request
	require.NoError(t, g.RecordRequest(alice, big.NewInt(10), big.NewInt(50), 0))
	require.NoError(t, g.RecordStake(alice, 50))

	amount, err := g.ResolveRequest(alice, 100)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), amount)
}
