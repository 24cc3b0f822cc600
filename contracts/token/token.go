// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the fungible asset ledger. One instance is bound
// per configured asset; pools hold custody balances on it like any account.
package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/fleek-platform/fleek-contracts/contracts/reverts"
	"github.com/fleek-platform/fleek-contracts/contracts/solidity"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/state"
)

var (
	slotTotalSupply = fleek.BytesToBytes32([]byte("total-supply"))
	slotBalances    = fleek.BytesToBytes32([]byte("balances"))
	slotAllowances  = fleek.BytesToBytes32([]byte("allowances"))
)

type allowanceKey struct {
	owner   fleek.Address
	spender fleek.Address
}

func (k allowanceKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.spender.Bytes()...)
}

// Token binds the asset ledger at the given instance address.
type Token struct {
	context    *solidity.Context
	supply     *solidity.Uint256
	balances   *solidity.Mapping[fleek.Address, *big.Int]
	allowances *solidity.Mapping[allowanceKey, *big.Int]
}

func New(addr fleek.Address, st *state.State) *Token {
	context := solidity.NewContext(addr, st)
	return &Token{
		context:    context,
		supply:     solidity.NewUint256(context, slotTotalSupply),
		balances:   solidity.NewMapping[fleek.Address, *big.Int](context, slotBalances),
		allowances: solidity.NewMapping[allowanceKey, *big.Int](context, slotAllowances),
	}
}

// Address returns the asset's instance address.
func (t *Token) Address() fleek.Address {
	return t.context.Address()
}

// TotalSupply returns the amount ever minted.
func (t *Token) TotalSupply() (*big.Int, error) {
	return t.supply.Get()
}

// BalanceOf returns the balance held by addr.
func (t *Token) BalanceOf(addr fleek.Address) (*big.Int, error) {
	return t.balances.Get(addr)
}

// Allowance returns what spender may move out of owner's balance.
func (t *Token) Allowance(owner, spender fleek.Address) (*big.Int, error) {
	return t.allowances.Get(allowanceKey{owner, spender})
}

// Mint credits addr with newly created amount. Only genesis mints.
func (t *Token) Mint(addr fleek.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.ErrInvalidAmount, "mint amount negative")
	}
	supply, err := t.supply.Get()
	if err != nil {
		return err
	}
	if new(big.Int).Add(supply, amount).Cmp(math.MaxBig256) > 0 {
		return reverts.New(reverts.ErrOverflow, "token supply exceeds uint256")
	}
	if err := t.supply.Add(amount); err != nil {
		return err
	}
	balance, err := t.balances.Get(addr)
	if err != nil {
		return err
	}
	return t.balances.Set(addr, balance.Add(balance, amount))
}

// Approve lets spender move up to amount out of owner's balance.
func (t *Token) Approve(owner, spender fleek.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.ErrInvalidAmount, "allowance negative")
	}
	return t.allowances.Set(allowanceKey{owner, spender}, amount)
}

// Transfer moves amount from one holder to another. It fails with
// InsufficientFunds when the sender's balance is short; no clamping.
func (t *Token) Transfer(from, to fleek.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.ErrInvalidAmount, "transfer amount negative")
	}
	fromBalance, err := t.balances.Get(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return reverts.New(reverts.ErrInsufficientFunds,
			"transfer %v exceeds balance %v of %v", amount, fromBalance, from)
	}
	if err := t.balances.Set(from, fromBalance.Sub(fromBalance, amount)); err != nil {
		return err
	}
	toBalance, err := t.balances.Get(to)
	if err != nil {
		return err
	}
	return t.balances.Set(to, toBalance.Add(toBalance, amount))
}

// TransferFrom moves amount from 'from' to 'to' on behalf of spender,
// consuming spender's allowance. The allowance check runs before the
// balance check, so the failure kind tells the caller what to fix.
func (t *Token) TransferFrom(spender, from, to fleek.Address, amount *big.Int) error {
	if spender != from {
		key := allowanceKey{from, spender}
		allowance, err := t.allowances.Get(key)
		if err != nil {
			return err
		}
		if allowance.Cmp(amount) < 0 {
			return reverts.New(reverts.ErrInsufficientAllowance,
				"transfer %v exceeds allowance %v for %v", amount, allowance, spender)
		}
		if err := t.allowances.Set(key, allowance.Sub(allowance, amount)); err != nil {
			return err
		}
	}
	return t.Transfer(from, to, amount)
}
