// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/fleek-platform/fleek-contracts/contracts/pool/gate"
	"github.com/fleek-platform/fleek-contracts/fleek"
)

// DevAccounts are the fixed accounts of the development network. The first
// account holds the admin and funder roles.
func DevAccounts() []fleek.Address {
	names := []string{
		"dev-0", "dev-1", "dev-2", "dev-3", "dev-4",
		"dev-5", "dev-6", "dev-7", "dev-8", "dev-9",
	}
	accounts := make([]fleek.Address, 0, len(names))
	for _, name := range names {
		accounts = append(accounts, fleek.InstanceAddress("dev-account", name))
	}
	return accounts
}

// NewDevnet creates the development network genesis: one shared asset,
// generously allocated dev accounts, a lock pool and a cooldown pool. Both
// pools stake and reward the same asset, so a funder should mind that pool
// custody includes staked principal.
func NewDevnet() *Genesis {
	accounts := DevAccounts()

	million := new(big.Int).Mul(big.NewInt(1_000_000), fleek.RewardScale)
	allocations := make([]Allocation, 0, len(accounts))
	for _, account := range accounts {
		allocations = append(allocations, Allocation{
			Address: account,
			Balance: (*math.HexOrDecimal256)(new(big.Int).Set(million)),
		})
	}

	const day = 86400
	config := &Config{
		Name: "devnet",
		Tokens: []TokenConfig{
			{Name: "FLK", Allocations: allocations},
		},
		Roles: RolesConfig{
			Admins:  []fleek.Address{accounts[0]},
			Funders: []fleek.Address{accounts[0]},
		},
		Pools: []PoolConfig{
			{
				Name:            "locked",
				StakeToken:      "FLK",
				RewardToken:     "FLK",
				Gate:            gate.KindPostStakeLock,
				GatePeriod:      7 * day,
				RewardsDuration: 90 * day,
			},
			{
				Name:            "cooldown",
				StakeToken:      "FLK",
				RewardToken:     "FLK",
				Gate:            gate.KindPostRequestCooldown,
				GatePeriod:      2 * day,
				RewardsDuration: 30 * day,
			},
		},
	}

	gene, err := New(config)
	if err != nil {
		// the preset is fixed; a validation failure is a programming error
		panic(err)
	}
	return gene
}
