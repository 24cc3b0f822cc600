// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleek-platform/fleek-contracts/contracts/reverts"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/lvldb"
	"github.com/fleek-platform/fleek-contracts/state"
)

var (
	alice = fleek.BytesToAddress([]byte("alice"))
	bob   = fleek.BytesToAddress([]byte("bob"))
	pool  = fleek.BytesToAddress([]byte("pool"))
)

func newTestToken(t *testing.T) *Token {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.NewStater(db, 1).NewState()
	return New(fleek.InstanceAddress("token", "test"), st)
}

func TestMintAndSupply(t *testing.T) {
	tok := newTestToken(t)

	require.NoError(t, tok.Mint(alice, big.NewInt(1000)))
	require.NoError(t, tok.Mint(bob, big.NewInt(500)))

	supply, err := tok.TotalSupply()
	assert.NoError(t, err)
	assert.Equal(t, int64(1500), supply.Int64())

	balance, err := tok.BalanceOf(alice)
	assert.NoError(t, err)
	assert.Equal(t, int64(1000), balance.Int64())
}

func TestTransfer(t *testing.T) {
	tok := newTestToken(t)
	require.NoError(t, tok.Mint(alice, big.NewInt(100)))

	require.NoError(t, tok.Transfer(alice, bob, big.NewInt(40)))

	aliceBal, _ := tok.BalanceOf(alice)
	bobBal, _ := tok.BalanceOf(bob)
	assert.Equal(t, int64(60), aliceBal.Int64())
	assert.Equal(t, int64(40), bobBal.Int64())

	// short balance is a typed failure, nothing moves
	err := tok.Transfer(alice, bob, big.NewInt(61))
	assert.True(t, errors.Is(err, reverts.ErrInsufficientFunds))

	aliceBal, _ = tok.BalanceOf(alice)
	assert.Equal(t, int64(60), aliceBal.Int64())
}

func TestTransferToSelf(t *testing.T) {
	tok := newTestToken(t)
	require.NoError(t, tok.Mint(alice, big.NewInt(100)))

	require.NoError(t, tok.Transfer(alice, alice, big.NewInt(100)))

	balance, _ := tok.BalanceOf(alice)
	assert.Equal(t, int64(100), balance.Int64())
}

func TestTransferFrom(t *testing.T) {
	tok := newTestToken(t)
	require.NoError(t, tok.Mint(alice, big.NewInt(100)))

	// no allowance yet
	err := tok.TransferFrom(pool, alice, pool, big.NewInt(10))
	assert.True(t, errors.Is(err, reverts.ErrInsufficientAllowance))

	require.NoError(t, tok.Approve(alice, pool, big.NewInt(50)))

	require.NoError(t, tok.TransferFrom(pool, alice, pool, big.NewInt(30)))

	remaining, _ := tok.Allowance(alice, pool)
	assert.Equal(t, int64(20), remaining.Int64())

	poolBal, _ := tok.BalanceOf(pool)
	assert.Equal(t, int64(30), poolBal.Int64())

	// allowance consumed below the requested amount
	err = tok.TransferFrom(pool, alice, pool, big.NewInt(21))
	assert.True(t, errors.Is(err, reverts.ErrInsufficientAllowance))

	// the owner moving its own balance needs no allowance
	require.NoError(t, tok.TransferFrom(alice, alice, bob, big.NewInt(10)))
}

func TestTransferFromAllowanceBeforeBalance(t *testing.T) {
	tok := newTestToken(t)
	require.NoError(t, tok.Mint(alice, big.NewInt(10)))
	require.NoError(t, tok.Approve(alice, pool, big.NewInt(100)))

	// allowance suffices, balance does not
	err := tok.TransferFrom(pool, alice, pool, big.NewInt(50))
	assert.True(t, errors.Is(err, reverts.ErrInsufficientFunds))
}
