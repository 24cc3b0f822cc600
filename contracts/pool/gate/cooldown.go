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

var slotRequests = fleek.BytesToBytes32([]byte("withdrawal-requests"))

// request is the pending withdrawal recorded by PostRequestCooldown.
type request struct {
	Amount      *big.Int
	RequestedAt uint64
}

// PostRequestCooldown requires withdrawals to be announced first and
// executed only once a cooldown has passed. Requests do not reserve the
// balance; staking while one is pending neither cancels nor delays it.
type PostRequestCooldown struct {
	period   uint64
	requests *solidity.Mapping[fleek.Address, request]
}

func NewPostRequestCooldown(sctx *solidity.Context, period uint64) *PostRequestCooldown {
	return &PostRequestCooldown{
		period:   period,
		requests: solidity.NewMapping[fleek.Address, request](sctx, slotRequests),
	}
}

func (g *PostRequestCooldown) Kind() string {
	return KindPostRequestCooldown
}

func (g *PostRequestCooldown) RecordStake(fleek.Address, uint64) error {
	return nil
}

func (g *PostRequestCooldown) CheckWithdraw(fleek.Address, uint64) error {
	return reverts.New(reverts.ErrUnsupported, "post-request-cooldown gate takes no direct withdrawals")
}

func (g *PostRequestCooldown) RecordRequest(account fleek.Address, amount, balance *big.Int, now uint64) error {
	if amount.Sign() <= 0 {
		return reverts.New(reverts.ErrInvalidAmount, "requested amount must be positive")
	}
	if amount.Cmp(balance) > 0 {
		return reverts.New(reverts.ErrInvalidAmount,
			"requested amount exceeds staked balance: have %v, want %v", balance, amount)
	}
	return g.requests.Set(account, request{Amount: amount, RequestedAt: now})
}

func (g *PostRequestCooldown) ResolveRequest(account fleek.Address, now uint64) (*big.Int, error) {
	req, err := g.requests.Get(account)
	if err != nil {
		return nil, err
	}
	if req.Amount == nil || req.Amount.Sign() == 0 {
		return nil, reverts.New(reverts.ErrInvalidAmount, "no pending withdrawal request")
	}
	if ready := req.RequestedAt + g.period; now < ready {
		return nil, reverts.New(reverts.ErrCooldownNotElapsed, "cooldown runs until %d", ready)
	}
	if err := g.requests.Clear(account); err != nil {
		return nil, err
	}
	return req.Amount, nil
}

func (g *PostRequestCooldown) Status(account fleek.Address) (*Status, error) {
	req, err := g.requests.Get(account)
	if err != nil {
		return nil, err
	}
	status := &Status{Kind: KindPostRequestCooldown}
	if req.Amount != nil && req.Amount.Sign() > 0 {
		status.Requested = req.Amount
		status.RequestedAt = req.RequestedAt
		status.ClaimableAt = req.RequestedAt + g.period
	}
	return status, nil
}
