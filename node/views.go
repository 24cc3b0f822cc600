// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"math/big"

	"github.com/fleek-platform/fleek-contracts/contracts/authority"
	"github.com/fleek-platform/fleek-contracts/contracts/pool/gate"
	"github.com/fleek-platform/fleek-contracts/contracts/token"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/genesis"
)

// PoolSummary is a read-only snapshot of one pool.
type PoolSummary struct {
	Name            string        `json:"name"`
	Address         fleek.Address `json:"address"`
	StakeToken      fleek.Address `json:"stakeToken"`
	RewardToken     fleek.Address `json:"rewardToken"`
	GateKind        string        `json:"gateKind"`
	GatePeriod      uint64        `json:"gatePeriod"`
	TotalStaked     *big.Int      `json:"totalStaked"`
	RewardRate      *big.Int      `json:"rewardRate"`
	RewardPerToken  *big.Int      `json:"rewardPerToken"`
	PeriodFinish    uint64        `json:"periodFinish"`
	RewardsDuration uint64        `json:"rewardsDuration"`
	Paused          bool          `json:"paused"`
}

// AccountStatus is a read-only snapshot of one account within a pool.
type AccountStatus struct {
	Address fleek.Address `json:"address"`
	Staked  *big.Int      `json:"staked"`
	Earned  *big.Int      `json:"earned"`
	Gate    *gate.Status  `json:"gate"`
}

// PoolSummaries snapshots every configured pool.
func (n *Node) PoolSummaries() ([]*PoolSummary, error) {
	var summaries []*PoolSummary
	for i := range n.gene.Config().Pools {
		summary, err := n.PoolSummary(n.gene.Config().Pools[i].Name)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// PoolSummary snapshots the named pool as of the last committed state.
func (n *Node) PoolSummary(name string) (*PoolSummary, error) {
	st := n.stater.NewState()
	p, pc, err := n.bindPool(name, st)
	if err != nil {
		return nil, err
	}

	summary := &PoolSummary{
		Name:        pc.Name,
		Address:     pc.Address(),
		StakeToken:  p.StakeToken(),
		RewardToken: p.RewardToken(),
		GateKind:    p.GateKind(),
		GatePeriod:  pc.GatePeriod,
	}
	if summary.TotalStaked, err = p.TotalStaked(); err != nil {
		return nil, err
	}
	if summary.RewardRate, err = p.RewardRate(); err != nil {
		return nil, err
	}
	if summary.RewardPerToken, err = p.RewardPerToken(n.opts.Now()); err != nil {
		return nil, err
	}
	if summary.PeriodFinish, err = p.PeriodFinish(); err != nil {
		return nil, err
	}
	if summary.RewardsDuration, err = p.RewardsDuration(); err != nil {
		return nil, err
	}
	if summary.Paused, err = p.IsPaused(); err != nil {
		return nil, err
	}
	return summary, nil
}

// AccountStatus snapshots the account's standing in the named pool.
func (n *Node) AccountStatus(poolName string, account fleek.Address) (*AccountStatus, error) {
	st := n.stater.NewState()
	p, _, err := n.bindPool(poolName, st)
	if err != nil {
		return nil, err
	}

	status := &AccountStatus{Address: account}
	if status.Staked, err = p.BalanceOf(account); err != nil {
		return nil, err
	}
	if status.Earned, err = p.Earned(account, n.opts.Now()); err != nil {
		return nil, err
	}
	if status.Gate, err = p.GateStatus(account); err != nil {
		return nil, err
	}
	return status, nil
}

// TokenBalance returns the account's balance of the asset.
func (n *Node) TokenBalance(asset, account fleek.Address) (*big.Int, error) {
	return token.New(asset, n.stater.NewState()).BalanceOf(account)
}

// TokenAllowance returns what spender may pull from owner.
func (n *Node) TokenAllowance(asset, owner, spender fleek.Address) (*big.Int, error) {
	return token.New(asset, n.stater.NewState()).Allowance(owner, spender)
}

// TokenTotalSupply returns the asset's total supply.
func (n *Node) TokenTotalSupply(asset fleek.Address) (*big.Int, error) {
	return token.New(asset, n.stater.NewState()).TotalSupply()
}

// RoleMembers lists the current holders of the role.
func (n *Node) RoleMembers(role string) ([]fleek.Address, error) {
	return authority.New(genesis.AuthorityAddress(), n.stater.NewState()).Members(role)
}

// HasRole reports whether member holds the role.
func (n *Node) HasRole(role string, member fleek.Address) (bool, error) {
	return authority.New(genesis.AuthorityAddress(), n.stater.NewState()).HasRole(role, member)
}
