// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleek-platform/fleek-contracts/contracts/authority"
	"github.com/fleek-platform/fleek-contracts/contracts/pool"
	"github.com/fleek-platform/fleek-contracts/contracts/pool/gate"
	"github.com/fleek-platform/fleek-contracts/contracts/token"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/genesis"
	"github.com/fleek-platform/fleek-contracts/lvldb"
	"github.com/fleek-platform/fleek-contracts/state"
)

func buildState(t *testing.T, gene *genesis.Genesis) *state.State {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.NewStater(db, 1).NewState()
	require.NoError(t, gene.Build(st))
	return st
}

func TestDevnet(t *testing.T) {
	gene := genesis.NewDevnet()
	assert.Equal(t, "devnet", gene.Name())
	assert.False(t, gene.ID().IsZero())

	st := buildState(t, gene)

	flk, err := gene.Config().TokenAddress("FLK")
	require.NoError(t, err)
	tok := token.New(flk, st)

	accounts := genesis.DevAccounts()
	million := new(big.Int).Mul(big.NewInt(1_000_000), fleek.RewardScale)
	for _, account := range accounts {
		balance, err := tok.BalanceOf(account)
		require.NoError(t, err)
		assert.Equal(t, million, balance)
	}
	supply, err := tok.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Mul(million, big.NewInt(int64(len(accounts)))), supply)

	auth := authority.New(genesis.AuthorityAddress(), st)
	isAdmin, err := auth.HasRole(authority.RoleAdmin, accounts[0])
	require.NoError(t, err)
	assert.True(t, isAdmin)
	isFunder, err := auth.HasRole(authority.RoleFunder, accounts[0])
	require.NoError(t, err)
	assert.True(t, isFunder)
	isAdmin, err = auth.HasRole(authority.RoleAdmin, accounts[1])
	require.NoError(t, err)
	assert.False(t, isAdmin)

	// both pools come up initialized with their durations
	for _, pc := range gene.Config().Pools {
		opts, err := genesis.PoolOptions(gene.Config(), &pc, st)
		require.NoError(t, err)
		p, err := pool.New(pc.Address(), st, opts)
		require.NoError(t, err)
		duration, err := p.RewardsDuration()
		require.NoError(t, err)
		assert.Equal(t, pc.RewardsDuration, duration)
		paused, err := p.IsPaused()
		require.NoError(t, err)
		assert.False(t, paused)
	}
}

func TestDevnetIDStable(t *testing.T) {
	assert.Equal(t, genesis.NewDevnet().ID(), genesis.NewDevnet().ID())
}

func TestIDChangesWithConfig(t *testing.T) {
	a := genesis.NewDevnet()

	config := *a.Config()
	config.Name = "devnet-2"
	b, err := genesis.New(&config)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID(), b.ID())
}

func TestCustomNet(t *testing.T) {
	alice := fleek.BytesToAddress([]byte("alice"))

	configJSON := `{
		"name": "testnet",
		"tokens": [
			{"name": "STK", "allocations": [{"address": "` + alice.String() + `", "balance": "0x64"}]},
			{"name": "RWD"}
		],
		"roles": {"admins": ["` + alice.String() + `"], "funders": ["` + alice.String() + `"]},
		"pools": [{
			"name": "main",
			"stakeToken": "STK",
			"rewardToken": "RWD",
			"gate": "` + gate.KindPostStakeLock + `",
			"gatePeriod": 3600,
			"rewardsDuration": 86400
		}]
	}`

	gene, err := genesis.NewCustomNet(strings.NewReader(configJSON))
	require.NoError(t, err)
	assert.Equal(t, "testnet", gene.Name())

	st := buildState(t, gene)
	stk, err := gene.Config().TokenAddress("STK")
	require.NoError(t, err)
	balance, err := token.New(stk, st).BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0x64), balance)
}

func TestCustomNetRejectsUnknownFields(t *testing.T) {
	_, err := genesis.NewCustomNet(strings.NewReader(`{"name": "x", "bogus": 1}`))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *genesis.Config {
		return &genesis.Config{
			Name:   "net",
			Tokens: []genesis.TokenConfig{{Name: "STK"}},
			Pools: []genesis.PoolConfig{{
				Name:            "main",
				StakeToken:      "STK",
				RewardToken:     "STK",
				Gate:            gate.KindPostRequestCooldown,
				GatePeriod:      1,
				RewardsDuration: 1,
			}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*genesis.Config)
		errs   string
	}{
		{"valid", func(*genesis.Config) {}, ""},
		{"missing name", func(c *genesis.Config) { c.Name = "" }, "network name"},
		{"no tokens", func(c *genesis.Config) { c.Tokens = nil }, "token required"},
		{"duplicate token", func(c *genesis.Config) {
			c.Tokens = append(c.Tokens, genesis.TokenConfig{Name: "STK"})
		}, "duplicate token"},
		{"negative allocation", func(c *genesis.Config) {
			c.Tokens[0].Allocations = []genesis.Allocation{{Balance: (*math.HexOrDecimal256)(big.NewInt(-1))}}
		}, "non-negative"},
		{"unknown stake token", func(c *genesis.Config) { c.Pools[0].StakeToken = "NO" }, "not declared"},
		{"unknown reward token", func(c *genesis.Config) { c.Pools[0].RewardToken = "NO" }, "not declared"},
		{"bad gate", func(c *genesis.Config) { c.Pools[0].Gate = "open" }, "unknown gate"},
		{"zero duration", func(c *genesis.Config) { c.Pools[0].RewardsDuration = 0 }, "duration"},
		{"duplicate pool", func(c *genesis.Config) { c.Pools = append(c.Pools, c.Pools[0]) }, "duplicate pool"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(config)
			err := config.Validate()
			if tt.errs == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errs)
			}
		})
	}
}
