// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/fleek-platform/fleek-contracts/contracts/pool/gate"
	"github.com/fleek-platform/fleek-contracts/fleek"
)

// Allocation seeds an account with an initial token balance.
type Allocation struct {
	Address fleek.Address         `json:"address"`
	Balance *math.HexOrDecimal256 `json:"balance"`
}

// TokenConfig declares a fungible asset instance. Its address is derived
// from the name.
type TokenConfig struct {
	Name        string       `json:"name"`
	Allocations []Allocation `json:"allocations"`
}

// RolesConfig seeds the authority registry.
type RolesConfig struct {
	Admins  []fleek.Address `json:"admins"`
	Funders []fleek.Address `json:"funders"`
}

// PoolConfig declares a reward pool instance. StakeToken and RewardToken
// name tokens declared in the same config; they may be the same token.
type PoolConfig struct {
	Name            string `json:"name"`
	StakeToken      string `json:"stakeToken"`
	RewardToken     string `json:"rewardToken"`
	Gate            string `json:"gate"`
	GatePeriod      uint64 `json:"gatePeriod"`
	RewardsDuration uint64 `json:"rewardsDuration"`
	Paused          bool   `json:"paused"`
}

// Address returns the pool's derived instance address.
func (p *PoolConfig) Address() fleek.Address {
	return fleek.InstanceAddress("pool", p.Name)
}

// Config is the complete declarative genesis of a deployment.
type Config struct {
	Name   string        `json:"name"`
	Tokens []TokenConfig `json:"tokens"`
	Roles  RolesConfig   `json:"roles"`
	Pools  []PoolConfig  `json:"pools"`
}

// TokenAddress returns the derived address of a declared token, or an error
// if the name is not declared.
func (c *Config) TokenAddress(name string) (fleek.Address, error) {
	for _, t := range c.Tokens {
		if t.Name == name {
			return fleek.InstanceAddress("token", t.Name), nil
		}
	}
	return fleek.Address{}, errors.Errorf("token %q not declared", name)
}

// Validate checks the config for internal consistency.
func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.New("network name required")
	}
	if len(c.Tokens) == 0 {
		return errors.New("at least one token required")
	}
	seenTokens := make(map[string]bool)
	for _, t := range c.Tokens {
		if t.Name == "" {
			return errors.New("token name required")
		}
		if seenTokens[t.Name] {
			return errors.Errorf("duplicate token %q", t.Name)
		}
		seenTokens[t.Name] = true
		for _, alloc := range t.Allocations {
			if alloc.Balance == nil || (*big.Int)(alloc.Balance).Sign() < 0 {
				return errors.Errorf("token %q: allocation of %s needs a non-negative balance", t.Name, alloc.Address)
			}
		}
	}
	seenPools := make(map[string]bool)
	for i := range c.Pools {
		p := &c.Pools[i]
		if p.Name == "" {
			return errors.New("pool name required")
		}
		if seenPools[p.Name] {
			return errors.Errorf("duplicate pool %q", p.Name)
		}
		seenPools[p.Name] = true
		if !seenTokens[p.StakeToken] {
			return errors.Errorf("pool %q: stake token %q not declared", p.Name, p.StakeToken)
		}
		if !seenTokens[p.RewardToken] {
			return errors.Errorf("pool %q: reward token %q not declared", p.Name, p.RewardToken)
		}
		if p.Gate != gate.KindPostStakeLock && p.Gate != gate.KindPostRequestCooldown {
			return errors.Errorf("pool %q: unknown gate kind %q", p.Name, p.Gate)
		}
		if p.RewardsDuration == 0 {
			return errors.Errorf("pool %q: rewards duration required", p.Name)
		}
	}
	return nil
}
