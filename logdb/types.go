// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/fleek-platform/fleek-contracts/fleek"
)

// Operation kinds recorded in the journal.
const (
	KindStake              = "stake"
	KindWithdraw           = "withdraw"
	KindRequestWithdrawal  = "request-withdrawal"
	KindCompleteWithdrawal = "complete-withdrawal"
	KindClaim              = "claim"
	KindExit               = "exit"
	KindFund               = "fund"
	KindSetDuration        = "set-duration"
	KindSetPaused          = "set-paused"
	KindRecover            = "recover"
	KindTokenTransfer      = "token-transfer"
	KindTokenApprove       = "token-approve"
	KindRoleGrant          = "role-grant"
	KindRoleRevoke         = "role-revoke"
)

// Op is one committed operation. Seq is assigned by the journal and strictly
// increasing; Instance is the contract the operation ran against (a pool for
// pool operations, the token or authority contract otherwise).
type Op struct {
	Seq      uint64        `json:"seq"`
	ID       string        `json:"id"`
	Time     uint64        `json:"time"`
	Instance fleek.Address `json:"instance"`
	Kind     string        `json:"kind"`
	Account  fleek.Address `json:"account"`
	Amount   *big.Int      `json:"amount"`

	// pool totals as of right after the operation; nil for non-pool kinds
	TotalStaked *big.Int `json:"totalStaked"`
	RewardRate  *big.Int `json:"rewardRate"`
}

// RangeUnit selects what a Range bounds.
type RangeUnit string

// Range units.
const (
	Seq  RangeUnit = "seq"
	Time RangeUnit = "time"
)

// Range bounds a filter by sequence or unix time, both ends inclusive.
type Range struct {
	Unit RangeUnit `json:"unit"`
	From uint64    `json:"from"`
	To   uint64    `json:"to"`
}

// Options paginates filter results.
type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Order of filter results.
type Order string

// Orders.
const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Criteria matches operations; fields set to nil/empty match anything.
// Multiple criteria in a filter are OR-ed.
type Criteria struct {
	Instance *fleek.Address `json:"instance"`
	Account  *fleek.Address `json:"account"`
	Kind     string         `json:"kind"`
}

// Filter selects journal rows.
type Filter struct {
	CriteriaSet []*Criteria `json:"criteriaSet"`
	Range       *Range      `json:"range"`
	Options     *Options    `json:"options"`
	Order       Order       `json:"order"`
}
