// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gate

import (
	"math/big"

	"github.com/fleek-platform/fleek-contracts/contracts/reverts"
	"github.com/fleek-platform/fleek-contracts/contracts/solidity"
	"github.com/fleek-platform/fleek-contracts/fleek"
)

var slotLastStake = fleek.BytesToBytes32([]byte("last-stake-time"))

// PostStakeLock holds the whole balance for a fixed period after every
// stake. A top-up re-locks everything, withdrawals do not extend the lock.
type PostStakeLock struct {
	period    uint64
	lastStake *solidity.Mapping[fleek.Address, uint64]
}

func NewPostStakeLock(sctx *solidity.Context, period uint64) *PostStakeLock {
	return &PostStakeLock{
		period:    period,
		lastStake: solidity.NewMapping[fleek.Address, uint64](sctx, slotLastStake),
	}
}

func (g *PostStakeLock) Kind() string {
	return KindPostStakeLock
}

func (g *PostStakeLock) RecordStake(account fleek.Address, now uint64) error {
	return g.lastStake.Set(account, now)
}

func (g *PostStakeLock) CheckWithdraw(account fleek.Address, now uint64) error {
	last, err := g.lastStake.Get(account)
	if err != nil {
		return err
	}
	if unlock := last + g.period; now < unlock {
		return reverts.New(reverts.ErrStillLocked, "balance locked until %d", unlock)
	}
	return nil
}

func (g *PostStakeLock) RecordRequest(fleek.Address, *big.Int, *big.Int, uint64) error {
	return reverts.New(reverts.ErrUnsupported, "post-stake-lock gate takes no withdrawal requests")
}

func (g *PostStakeLock) ResolveRequest(fleek.Address, uint64) (*big.Int, error) {
	return nil, reverts.New(reverts.ErrUnsupported, "post-stake-lock gate takes no withdrawal requests")
}

func (g *PostStakeLock) Status(account fleek.Address) (*Status, error) {
	last, err := g.lastStake.Get(account)
	if err != nil {
		return nil, err
	}
	status := &Status{Kind: KindPostStakeLock}
	if last > 0 {
		status.UnlockTime = last + g.period
	}
	return status, nil
}
