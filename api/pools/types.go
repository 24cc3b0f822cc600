// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/fleek-platform/fleek-contracts/fleek"
)

// AmountRequest is the body of operations moving an amount on behalf of the
// caller. Amounts accept both decimal and 0x-prefixed hex notation.
type AmountRequest struct {
	Caller fleek.Address         `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// CallerRequest is the body of operations that only name the caller.
type CallerRequest struct {
	Caller fleek.Address `json:"caller"`
}

// DurationRequest is the body of the rewards-duration update.
type DurationRequest struct {
	Caller   fleek.Address `json:"caller"`
	Duration uint64        `json:"duration"`
}

// PausedRequest is the body of the pause switch.
type PausedRequest struct {
	Caller fleek.Address `json:"caller"`
	Paused bool          `json:"paused"`
}

// RecoverRequest is the body of the foreign-asset sweep.
type RecoverRequest struct {
	Caller fleek.Address         `json:"caller"`
	Asset  fleek.Address         `json:"asset"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

func bigAmount(amount *math.HexOrDecimal256) *big.Int {
	if amount == nil {
		return nil
	}
	return (*big.Int)(amount)
}
