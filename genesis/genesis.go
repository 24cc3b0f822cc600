// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis turns a declarative network config into the initial ledger
// state: token supplies, role members, pause switches and provisioned pools.
package genesis

import (
	"math/big"

	"github.com/qianbin/drlp"

	"github.com/fleek-platform/fleek-contracts/contracts/authority"
	"github.com/fleek-platform/fleek-contracts/contracts/params"
	"github.com/fleek-platform/fleek-contracts/contracts/pool"
	"github.com/fleek-platform/fleek-contracts/contracts/token"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/state"
)

// Well-known instance names of the singleton contracts.
const (
	AuthorityName = "authority"
	ParamsName    = "params"
)

// AuthorityAddress is the role registry's address.
func AuthorityAddress() fleek.Address {
	return fleek.InstanceAddress("authority", AuthorityName)
}

// ParamsAddress is the governed params contract's address.
func ParamsAddress() fleek.Address {
	return fleek.InstanceAddress("params", ParamsName)
}

// Genesis describes a deployment's initial state.
type Genesis struct {
	builder *Builder
	config  *Config
	id      fleek.Bytes32
}

// New creates a genesis from a validated config.
func New(config *Config) (*Genesis, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	builder := new(Builder)

	for _, tc := range config.Tokens {
		tc := tc
		addr := fleek.InstanceAddress("token", tc.Name)
		builder.State(func(st *state.State) error {
			tok := token.New(addr, st)
			for _, alloc := range tc.Allocations {
				if err := tok.Mint(alloc.Address, (*big.Int)(alloc.Balance)); err != nil {
					return err
				}
			}
			return nil
		})
	}

	roles := config.Roles
	builder.State(func(st *state.State) error {
		auth := authority.New(AuthorityAddress(), st)
		for _, admin := range roles.Admins {
			if _, err := auth.Grant(authority.RoleAdmin, admin); err != nil {
				return err
			}
		}
		for _, funder := range roles.Funders {
			if _, err := auth.Grant(authority.RoleFunder, funder); err != nil {
				return err
			}
		}
		return nil
	})

	for i := range config.Pools {
		pc := config.Pools[i]
		builder.State(func(st *state.State) error {
			opts, err := PoolOptions(config, &pc, st)
			if err != nil {
				return err
			}
			p, err := pool.New(pc.Address(), st, opts)
			if err != nil {
				return err
			}
			if err := p.Initialize(pc.RewardsDuration); err != nil {
				return err
			}
			if pc.Paused {
				return params.New(ParamsAddress(), st).SetPaused(pc.Address(), true)
			}
			return nil
		})
	}

	return &Genesis{
		builder: builder,
		config:  config,
		id:      configID(config),
	}, nil
}

// ID returns the genesis identifier, a digest of the whole config. Two
// deployments share an instance directory only if their IDs match.
func (g *Genesis) ID() fleek.Bytes32 {
	return g.id
}

// Name returns the configured network name.
func (g *Genesis) Name() string {
	return g.config.Name
}

// Config returns the underlying config.
func (g *Genesis) Config() *Config {
	return g.config
}

// Build seeds the given state. The caller commits the resulting stage.
func (g *Genesis) Build(st *state.State) error {
	return g.builder.Build(st)
}

// PoolOptions resolves a pool config's collaborators against the given state.
func PoolOptions(config *Config, pc *PoolConfig, st *state.State) (*pool.Options, error) {
	stakeAddr, err := config.TokenAddress(pc.StakeToken)
	if err != nil {
		return nil, err
	}
	rewardAddr, err := config.TokenAddress(pc.RewardToken)
	if err != nil {
		return nil, err
	}
	return &pool.Options{
		StakeToken:  token.New(stakeAddr, st),
		RewardToken: token.New(rewardAddr, st),
		Authority:   authority.New(AuthorityAddress(), st),
		Params:      params.New(ParamsAddress(), st),
		GateKind:    pc.Gate,
		GatePeriod:  pc.GatePeriod,
	}, nil
}

// configID hashes the deterministic serialization of the config.
func configID(config *Config) fleek.Bytes32 {
	var buf []byte
	buf = drlp.AppendString(buf, []byte(config.Name))
	for _, t := range config.Tokens {
		buf = drlp.AppendString(buf, []byte(t.Name))
		for _, alloc := range t.Allocations {
			buf = drlp.AppendString(buf, alloc.Address.Bytes())
			buf = drlp.AppendString(buf, (*big.Int)(alloc.Balance).Bytes())
		}
	}
	for _, admin := range config.Roles.Admins {
		buf = drlp.AppendString(buf, admin.Bytes())
	}
	for _, funder := range config.Roles.Funders {
		buf = drlp.AppendString(buf, funder.Bytes())
	}
	for i := range config.Pools {
		p := &config.Pools[i]
		buf = drlp.AppendString(buf, []byte(p.Name))
		buf = drlp.AppendString(buf, []byte(p.StakeToken))
		buf = drlp.AppendString(buf, []byte(p.RewardToken))
		buf = drlp.AppendString(buf, []byte(p.Gate))
		buf = drlp.AppendUint(buf, p.GatePeriod)
		buf = drlp.AppendUint(buf, p.RewardsDuration)
		if p.Paused {
			buf = drlp.AppendUint(buf, 1)
		} else {
			buf = drlp.AppendUint(buf, 0)
		}
	}
	return fleek.Blake2b(buf)
}
