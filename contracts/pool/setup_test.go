// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleek-platform/fleek-contracts/contracts/authority"
	"github.com/fleek-platform/fleek-contracts/contracts/params"
	"github.com/fleek-platform/fleek-contracts/contracts/token"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/lvldb"
	"github.com/fleek-platform/fleek-contracts/state"
)

const day = uint64(86400)

var (
	alice = fleek.BytesToAddress([]byte("alice"))
	bob   = fleek.BytesToAddress([]byte("bob"))
	eve   = fleek.BytesToAddress([]byte("eve"))
)

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), fleek.RewardScale)
}

type PoolTest struct {
	*Pool
	t *testing.T

	stake  *token.Token
	reward *token.Token
	auth   *authority.Authority

	admin  fleek.Address
	funder fleek.Address
}

func newTest(t *testing.T, gateKind string, gatePeriod uint64) *PoolTest {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.NewStater(db, 1).NewState()

	stake := token.New(fleek.InstanceAddress("token", "stake"), st)
	reward := token.New(fleek.InstanceAddress("token", "reward"), st)
	auth := authority.New(fleek.InstanceAddress("authority", "test"), st)
	par := params.New(fleek.InstanceAddress("params", "test"), st)

	admin := fleek.BytesToAddress([]byte("admin"))
	funder := fleek.BytesToAddress([]byte("funder"))

	_, err = auth.Grant(authority.RoleAdmin, admin)
	require.NoError(t, err)
	_, err = auth.Grant(authority.RoleFunder, funder)
	require.NoError(t, err)

	pool, err := New(fleek.InstanceAddress("pool", "test"), st, &Options{
		StakeToken:  stake,
		RewardToken: reward,
		Authority:   auth,
		Params:      par,
		GateKind:    gateKind,
		GatePeriod:  gatePeriod,
	})
	require.NoError(t, err)

	return &PoolTest{
		Pool:   pool,
		t:      t,
		stake:  stake,
		reward: reward,
		auth:   auth,
		admin:  admin,
		funder: funder,
	}
}

func (pt *PoolTest) State() *state.State {
	return pt.context.State()
}

// InitDuration seeds the rewards duration the way genesis provisioning does.
func (pt *PoolTest) InitDuration(duration uint64) *PoolTest {
	require.NoError(pt.t, pt.Initialize(duration))
	return pt
}

// GiveStake mints `amount` of the stake asset to the account and approves the
// pool to pull it.
func (pt *PoolTest) GiveStake(account fleek.Address, amount *big.Int) *PoolTest {
	require.NoError(pt.t, pt.stake.Mint(account, amount))
	require.NoError(pt.t, pt.stake.Approve(account, pt.Address(), amount))
	return pt
}

// Fund mints `amount` of the reward asset to the funder and notifies the pool.
func (pt *PoolTest) Fund(amount *big.Int, now uint64) *PoolTest {
	require.NoError(pt.t, pt.reward.Mint(pt.funder, amount))
	require.NoError(pt.t, pt.reward.Approve(pt.funder, pt.Address(), amount))
	require.NoError(pt.t, pt.NotifyReward(pt.funder, amount, now))
	return pt
}

func (pt *PoolTest) AssertTotalStaked(expected *big.Int) *PoolTest {
	total, err := pt.TotalStaked()
	assert.NoError(pt.t, err, "failed to get total staked")
	assert.Equal(pt.t, expected, total, "total staked mismatch")
	return pt
}

func (pt *PoolTest) AssertStaked(account fleek.Address, expected *big.Int) *PoolTest {
	balance, err := pt.BalanceOf(account)
	assert.NoError(pt.t, err, "failed to get staked balance of %s", account)
	assert.Equal(pt.t, expected, balance, "staked balance mismatch for %s", account)
	return pt
}

func (pt *PoolTest) AssertEarned(account fleek.Address, now uint64, expected *big.Int) *PoolTest {
	earned, err := pt.Earned(account, now)
	assert.NoError(pt.t, err, "failed to get earned of %s", account)
	assert.Equal(pt.t, expected, earned, "earned mismatch for %s at %d", account, now)
	return pt
}

// AssertHolding checks an account's balance of an asset outside the pool.
func (pt *PoolTest) AssertHolding(tok *token.Token, account fleek.Address, expected *big.Int) *PoolTest {
	balance, err := tok.BalanceOf(account)
	assert.NoError(pt.t, err, "failed to get holding of %s", account)
	assert.Equal(pt.t, expected, balance, "holding mismatch for %s", account)
	return pt
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	pool *PoolTest

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(pool *PoolTest) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), pool: pool}
}

func (ts *TestSequence) AddFunc(f TestFunc) *TestSequence {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.funcs = append(ts.funcs, f)
	return ts
}

func (ts *TestSequence) Stake(addr fleek.Address, amount *big.Int, now uint64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		ts.pool.GiveStake(addr, amount)
		if err := ts.pool.Pool.Stake(addr, amount, now); err != nil {
			t.Fatalf("failed to stake for %s: %v", addr, err)
		}
		t.Logf("staked %s for %s at %d", amount, addr, now)
	})
}

func (ts *TestSequence) Withdraw(addr fleek.Address, amount *big.Int, now uint64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		if err := ts.pool.Pool.Withdraw(addr, amount, now); err != nil {
			t.Fatalf("failed to withdraw for %s: %v", addr, err)
		}
		t.Logf("withdrew %s for %s at %d", amount, addr, now)
	})
}

func (ts *TestSequence) Claim(addr fleek.Address, now uint64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		amount, err := ts.pool.GetReward(addr, now)
		if err != nil {
			t.Fatalf("failed to claim for %s: %v", addr, err)
		}
		t.Logf("claimed %s for %s at %d", amount, addr, now)
	})
}

func (ts *TestSequence) Fund(amount *big.Int, now uint64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		ts.pool.Fund(amount, now)
		t.Logf("funded %s at %d", amount, now)
	})
}

func (ts *TestSequence) Run(t *testing.T) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	for _, f := range ts.funcs {
		f(t)
	}

	t.Logf("All test functions executed successfully")
}

type AccountAssertions struct {
	pool *Pool
	addr fleek.Address
	now  uint64

	staked *big.Int
	earned *big.Int
}

func AssertAccount(pool *Pool, addr fleek.Address, now uint64) *AccountAssertions {
	return &AccountAssertions{pool: pool, addr: addr, now: now}
}

func (aa *AccountAssertions) Staked(expected *big.Int) *AccountAssertions {
	aa.staked = expected
	return aa
}

func (aa *AccountAssertions) Earned(expected *big.Int) *AccountAssertions {
	aa.earned = expected
	return aa
}

func (aa *AccountAssertions) Assert(t *testing.T) {
	if aa.staked != nil {
		balance, err := aa.pool.BalanceOf(aa.addr)
		assert.NoError(t, err, "failed to get staked balance of %s", aa.addr)
		assert.Equal(t, aa.staked, balance, "account %s staked balance mismatch", aa.addr)
	}

	if aa.earned != nil {
		earned, err := aa.pool.Earned(aa.addr, aa.now)
		assert.NoError(t, err, "failed to get earned of %s", aa.addr)
		assert.Equal(t, aa.earned, earned, "account %s earned mismatch", aa.addr)
	}
}
