// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions_test

import (
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleek-platform/fleek-contracts/api/subscriptions"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/genesis"
	"github.com/fleek-platform/fleek-contracts/health"
	"github.com/fleek-platform/fleek-contracts/logdb"
	"github.com/fleek-platform/fleek-contracts/lvldb"
	"github.com/fleek-platform/fleek-contracts/node"
)

func newSubServer(t *testing.T) (*httptest.Server, *node.Node) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(logDB.Close)

	nd, err := node.New(genesis.NewDevnet(), db, logDB, new(health.Health), node.Options{
		Now: func() uint64 { return 1_000_000 },
	})
	require.NoError(t, err)

	subs := subscriptions.New(nd, []string{"*"})
	t.Cleanup(subs.Close)

	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, nd
}

func wsURL(ts *httptest.Server, path string) string {
	return "ws://" + strings.TrimPrefix(ts.URL, "http://") + path
}

// stake commits one operation so the journal advances.
func stake(t *testing.T, nd *node.Node, amount *big.Int) *logdb.Op {
	staker := genesis.DevAccounts()[1]
	pc, err := nd.PoolConfig("locked")
	require.NoError(t, err)
	flk, err := nd.Genesis().Config().TokenAddress("FLK")
	require.NoError(t, err)
	_, err = nd.TokenApprove(flk, staker, pc.Address(), amount)
	require.NoError(t, err)
	op, err := nd.Stake("locked", staker, amount)
	require.NoError(t, err)
	return op
}

func TestSubscribeFromPosition(t *testing.T) {
	ts, nd := newSubServer(t)

	one := new(big.Int).Set(fleek.RewardScale)
	stake(t, nd, one)

	conn, res, err := websocket.DefaultDialer.Dial(wsURL(ts, "/subscriptions/op?pos=0"), nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, res.StatusCode)

	// the backlog comes first: the approve then the stake
	var op logdb.Op
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.ReadJSON(&op))
	assert.Equal(t, uint64(1), op.Seq)
	assert.Equal(t, logdb.KindTokenApprove, op.Kind)

	require.NoError(t, conn.ReadJSON(&op))
	assert.Equal(t, uint64(2), op.Seq)
	assert.Equal(t, logdb.KindStake, op.Kind)

	// then live commits
	stake(t, nd, one)

	require.NoError(t, conn.ReadJSON(&op))
	assert.Equal(t, uint64(3), op.Seq)
	assert.Equal(t, logdb.KindTokenApprove, op.Kind)
	require.NoError(t, conn.ReadJSON(&op))
	assert.Equal(t, logdb.KindStake, op.Kind)
	assert.Equal(t, uint64(4), op.Seq)
}

func TestSubscribeDefaultsToHead(t *testing.T) {
	ts, nd := newSubServer(t)

	one := new(big.Int).Set(fleek.RewardScale)
	stake(t, nd, one) // seq 1, 2

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/subscriptions/op"), nil)
	require.NoError(t, err)
	defer conn.Close()

	stake(t, nd, one) // seq 3, 4

	var op logdb.Op
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.ReadJSON(&op))
	assert.Equal(t, uint64(3), op.Seq)
}

func TestSubscribePositionBeyondHead(t *testing.T) {
	ts, _ := newSubServer(t)

	_, res, err := websocket.DefaultDialer.Dial(wsURL(ts, "/subscriptions/op?pos=42"), nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
