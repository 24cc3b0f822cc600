// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"math/big"

	"github.com/fleek-platform/fleek-contracts/contracts/authority"
	"github.com/fleek-platform/fleek-contracts/contracts/reverts"
	"github.com/fleek-platform/fleek-contracts/contracts/token"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/genesis"
	"github.com/fleek-platform/fleek-contracts/logdb"
	"github.com/fleek-platform/fleek-contracts/state"
)

// Stake moves amount of the stake asset from caller into the named pool.
func (n *Node) Stake(poolName string, caller fleek.Address, amount *big.Int) (*logdb.Op, error) {
	pc, err := n.PoolConfig(poolName)
	if err != nil {
		return nil, err
	}
	return n.execute(pc.Address(), logdb.KindStake, func(st *state.State, now uint64) (*opResult, error) {
		p, _, err := n.bindPool(poolName, st)
		if err != nil {
			return nil, err
		}
		if err := p.Stake(caller, amount, now); err != nil {
			return nil, err
		}
		return &opResult{account: caller, amount: amount, pool: p}, nil
	})
}

// Withdraw returns amount of staked principal to caller (lock-gate pools).
func (n *Node) Withdraw(poolName string, caller fleek.Address, amount *big.Int) (*logdb.Op, error) {
	pc, err := n.PoolConfig(poolName)
	if err != nil {
		return nil, err
	}
	return n.execute(pc.Address(), logdb.KindWithdraw, func(st *state.State, now uint64) (*opResult, error) {
		p, _, err := n.bindPool(poolName, st)
		if err != nil {
			return nil, err
		}
		if err := p.Withdraw(caller, amount, now); err != nil {
			return nil, err
		}
		return &opResult{account: caller, amount: amount, pool: p}, nil
	})
}

// RequestWithdrawal starts the cooldown clock on amount (cooldown-gate pools).
func (n *Node) RequestWithdrawal(poolName string, caller fleek.Address, amount *big.Int) (*logdb.Op, error) {
	pc, err := n.PoolConfig(poolName)
	if err != nil {
		return nil, err
	}
	return n.execute(pc.Address(), logdb.KindRequestWithdrawal, func(st *state.State, now uint64) (*opResult, error) {
		p, _, err := n.bindPool(poolName, st)
		if err != nil {
			return nil, err
		}
		if err := p.RequestWithdrawal(caller, amount, now); err != nil {
			return nil, err
		}
		return &opResult{account: caller, amount: amount, pool: p}, nil
	})
}

// CompleteWithdrawal executes caller's matured withdrawal request.
func (n *Node) CompleteWithdrawal(poolName string, caller fleek.Address) (*logdb.Op, error) {
	pc, err := n.PoolConfig(poolName)
	if err != nil {
		return nil, err
	}
	return n.execute(pc.Address(), logdb.KindCompleteWithdrawal, func(st *state.State, now uint64) (*opResult, error) {
		p, _, err := n.bindPool(poolName, st)
		if err != nil {
			return nil, err
		}
		amount, err := p.CompleteWithdrawal(caller, now)
		if err != nil {
			return nil, err
		}
		return &opResult{account: caller, amount: amount, pool: p}, nil
	})
}

// GetReward pays out caller's settled reward.
func (n *Node) GetReward(poolName string, caller fleek.Address) (*logdb.Op, error) {
	pc, err := n.PoolConfig(poolName)
	if err != nil {
		return nil, err
	}
	return n.execute(pc.Address(), logdb.KindClaim, func(st *state.State, now uint64) (*opResult, error) {
		p, _, err := n.bindPool(poolName, st)
		if err != nil {
			return nil, err
		}
		amount, err := p.GetReward(caller, now)
		if err != nil {
			return nil, err
		}
		return &opResult{account: caller, amount: amount, pool: p}, nil
	})
}

// Exit withdraws caller's whole position and claims the settled reward. The
// journal records the exit with the withdrawn principal, plus a claim row
// when a reward was paid.
func (n *Node) Exit(poolName string, caller fleek.Address) (*logdb.Op, error) {
	pc, err := n.PoolConfig(poolName)
	if err != nil {
		return nil, err
	}
	return n.execute(pc.Address(), logdb.KindExit, func(st *state.State, now uint64) (*opResult, error) {
		p, _, err := n.bindPool(poolName, st)
		if err != nil {
			return nil, err
		}
		withdrawn, claimed, err := p.Exit(caller, now)
		if err != nil {
			return nil, err
		}
		return &opResult{account: caller, amount: withdrawn, claimed: claimed, pool: p}, nil
	})
}

// NotifyReward funds the pool with amount of the reward asset from caller.
func (n *Node) NotifyReward(poolName string, caller fleek.Address, amount *big.Int) (*logdb.Op, error) {
	pc, err := n.PoolConfig(poolName)
	if err != nil {
		return nil, err
	}
	return n.execute(pc.Address(), logdb.KindFund, func(st *state.State, now uint64) (*opResult, error) {
		p, _, err := n.bindPool(poolName, st)
		if err != nil {
			return nil, err
		}
		if err := p.NotifyReward(caller, amount, now); err != nil {
			return nil, err
		}
		return &opResult{account: caller, amount: amount, pool: p}, nil
	})
}

// SetRewardsDuration changes the pool's period length for future fundings.
func (n *Node) SetRewardsDuration(poolName string, caller fleek.Address, duration uint64) (*logdb.Op, error) {
	pc, err := n.PoolConfig(poolName)
	if err != nil {
		return nil, err
	}
	return n.execute(pc.Address(), logdb.KindSetDuration, func(st *state.State, now uint64) (*opResult, error) {
		p, _, err := n.bindPool(poolName, st)
		if err != nil {
			return nil, err
		}
		if err := p.SetRewardsDuration(caller, duration, now); err != nil {
			return nil, err
		}
		return &opResult{account: caller, amount: new(big.Int).SetUint64(duration), pool: p}, nil
	})
}

// SetPaused flips the pool's stake intake switch.
func (n *Node) SetPaused(poolName string, caller fleek.Address, paused bool) (*logdb.Op, error) {
	pc, err := n.PoolConfig(poolName)
	if err != nil {
		return nil, err
	}
	return n.execute(pc.Address(), logdb.KindSetPaused, func(st *state.State, now uint64) (*opResult, error) {
		p, _, err := n.bindPool(poolName, st)
		if err != nil {
			return nil, err
		}
		if err := p.SetPaused(caller, paused); err != nil {
			return nil, err
		}
		amount := big.NewInt(0)
		if paused {
			amount = big.NewInt(1)
		}
		return &opResult{account: caller, amount: amount, pool: p}, nil
	})
}

// RecoverForeignAsset sweeps a non-stake asset out of the pool to caller.
func (n *Node) RecoverForeignAsset(poolName string, caller, asset fleek.Address, amount *big.Int) (*logdb.Op, error) {
	pc, err := n.PoolConfig(poolName)
	if err != nil {
		return nil, err
	}
	return n.execute(pc.Address(), logdb.KindRecover, func(st *state.State, now uint64) (*opResult, error) {
		p, _, err := n.bindPool(poolName, st)
		if err != nil {
			return nil, err
		}
		if err := p.RecoverForeignAsset(caller, asset, amount); err != nil {
			return nil, err
		}
		return &opResult{account: caller, amount: amount, pool: p}, nil
	})
}

// TokenTransfer moves amount of the asset from caller to recipient.
func (n *Node) TokenTransfer(asset, caller, to fleek.Address, amount *big.Int) (*logdb.Op, error) {
	return n.execute(asset, logdb.KindTokenTransfer, func(st *state.State, _ uint64) (*opResult, error) {
		if err := token.New(asset, st).Transfer(caller, to, amount); err != nil {
			return nil, err
		}
		return &opResult{account: caller, amount: amount}, nil
	})
}

// TokenApprove lets spender pull up to amount of the asset from caller.
func (n *Node) TokenApprove(asset, caller, spender fleek.Address, amount *big.Int) (*logdb.Op, error) {
	return n.execute(asset, logdb.KindTokenApprove, func(st *state.State, _ uint64) (*opResult, error) {
		if err := token.New(asset, st).Approve(caller, spender, amount); err != nil {
			return nil, err
		}
		return &opResult{account: caller, amount: amount}, nil
	})
}

// GrantRole adds member to the role's registry. Admin only.
func (n *Node) GrantRole(caller fleek.Address, role string, member fleek.Address) (*logdb.Op, error) {
	return n.execute(genesis.AuthorityAddress(), logdb.KindRoleGrant, func(st *state.State, _ uint64) (*opResult, error) {
		auth := authority.New(genesis.AuthorityAddress(), st)
		if err := requireAdmin(auth, caller); err != nil {
			return nil, err
		}
		if _, err := auth.Grant(role, member); err != nil {
			return nil, err
		}
		return &opResult{account: member}, nil
	})
}

// RevokeRole removes member from the role's registry. Admin only.
func (n *Node) RevokeRole(caller fleek.Address, role string, member fleek.Address) (*logdb.Op, error) {
	return n.execute(genesis.AuthorityAddress(), logdb.KindRoleRevoke, func(st *state.State, _ uint64) (*opResult, error) {
		auth := authority.New(genesis.AuthorityAddress(), st)
		if err := requireAdmin(auth, caller); err != nil {
			return nil, err
		}
		if _, err := auth.Revoke(role, member); err != nil {
			return nil, err
		}
		return &opResult{account: member}, nil
	})
}

func requireAdmin(auth *authority.Authority, caller fleek.Address) error {
	ok, err := auth.HasRole(authority.RoleAdmin, caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.New(reverts.ErrUnauthorized, "admin role required")
	}
	return nil
}
