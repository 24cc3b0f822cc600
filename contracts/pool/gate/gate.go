// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package gate implements the withdrawal timing policies a pool can be
// provisioned with. Exactly one gate guards a pool; operations the gate's
// policy does not know are refused rather than silently approximated.
package gate

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/fleek-platform/fleek-contracts/contracts/solidity"
	"github.com/fleek-platform/fleek-contracts/fleek"
)

// Gate kinds.
const (
	KindPostStakeLock       = "post-stake-lock"
	KindPostRequestCooldown = "post-request-cooldown"
)

// Status describes an account's standing with the gate. Fields apply
// depending on Kind: UnlockTime for post-stake-lock, the request fields for
// post-request-cooldown.
type Status struct {
	Kind        string   `json:"kind"`
	UnlockTime  uint64   `json:"unlockTime,omitempty"`
	Requested   *big.Int `json:"requested,omitempty"`
	RequestedAt uint64   `json:"requestedAt,omitempty"`
	ClaimableAt uint64   `json:"claimableAt,omitempty"`
}

// Gate is the withdrawal policy consulted by the pool. Implementations keep
// their per-account bookkeeping in the pool's own storage.
type Gate interface {
	// Kind returns the gate's kind tag.
	Kind() string

	// RecordStake notes that the account's balance was topped up at now.
	RecordStake(account fleek.Address, now uint64) error

	// CheckWithdraw authorizes an immediate withdrawal at now.
	CheckWithdraw(account fleek.Address, now uint64) error

	// RecordRequest registers a pending withdrawal of amount, replacing any
	// previous request. Balance is the account's staked balance.
	RecordRequest(account fleek.Address, amount, balance *big.Int, now uint64) error

	// ResolveRequest consumes the pending request and returns its amount.
	ResolveRequest(account fleek.Address, now uint64) (*big.Int, error)

	// Status reports the account's standing.
	Status(account fleek.Address) (*Status, error)
}

// New returns the gate of the given kind, bound to the context's storage.
func New(sctx *solidity.Context, kind string, period uint64) (Gate, error) {
	switch kind {
	case KindPostStakeLock:
		return NewPostStakeLock(sctx, period), nil
	case KindPostRequestCooldown:
		return NewPostRequestCooldown(sctx, period), nil
	default:
		return nil, errors.Errorf("unknown gate kind %q", kind)
	}
}
