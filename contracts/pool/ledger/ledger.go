// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger tracks staked balances: the pool-wide total and the
// per-account breakdown. The total always equals the sum of the balances.
package ledger

import (
	"math/big"

	"github.com/fleek-platform/fleek-contracts/contracts/reverts"
	"github.com/fleek-platform/fleek-contracts/contracts/solidity"
	"github.com/fleek-platform/fleek-contracts/fleek"
)

var (
	slotTotalStaked = fleek.BytesToBytes32([]byte("total-staked"))
	slotBalances    = fleek.BytesToBytes32([]byte("staked-balances"))
)

// Service manages staked balance bookkeeping.
type Service struct {
	totalStaked *solidity.Uint256
	balances    *solidity.Mapping[fleek.Address, *big.Int]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		totalStaked: solidity.NewUint256(sctx, slotTotalStaked),
		balances:    solidity.NewMapping[fleek.Address, *big.Int](sctx, slotBalances),
	}
}

// TotalStaked returns the sum of all staked balances.
func (s *Service) TotalStaked() (*big.Int, error) {
	return s.totalStaked.Get()
}

// BalanceOf returns the account's staked balance.
func (s *Service) BalanceOf(account fleek.Address) (*big.Int, error) {
	return s.balances.Get(account)
}

// Credit adds amount to the account's staked balance and to the pool total.
func (s *Service) Credit(account fleek.Address, amount *big.Int) error {
	balance, err := s.balances.Get(account)
	if err != nil {
		return err
	}
	if err := s.balances.Set(account, new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	return s.totalStaked.Add(amount)
}

// Debit removes amount from the account's staked balance and from the pool
// total. It fails when the balance is short.
func (s *Service) Debit(account fleek.Address, amount *big.Int) error {
	balance, err := s.balances.Get(account)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return reverts.New(reverts.ErrInsufficientFunds,
			"staked balance too low: have %v, want %v", balance, amount)
	}
	balance.Sub(balance, amount)
	if balance.Sign() == 0 {
		if err := s.balances.Clear(account); err != nil {
			return err
		}
	} else if err := s.balances.Set(account, balance); err != nil {
		return err
	}
	return s.totalStaked.Sub(amount)
}
