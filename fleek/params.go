// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fleek

import (
	"math/big"
)

// Keys of governance params.
var (
	// RewardScale fixed-point scale of the reward-per-token accumulator.
	RewardScale = big.NewInt(1e18)

	// KeyPausePrefix prefix of per-pool pause switch keys in the params contract.
	KeyPausePrefix = []byte("paused")
)

// PauseKey derives the params key holding the pause switch of the given pool.
func PauseKey(pool Address) Bytes32 {
	return Blake2b(KeyPausePrefix, pool.Bytes())
}
