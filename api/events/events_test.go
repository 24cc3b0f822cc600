// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleek-platform/fleek-contracts/api/events"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/logdb"
)

const testLimit = 5

func newEventsServer(t *testing.T) (*httptest.Server, *logdb.LogDB) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(db.Close)

	router := mux.NewRouter()
	events.New(db, testLimit).Mount(router, "/logs/op")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, db
}

func appendOps(t *testing.T, db *logdb.LogDB, n int) {
	pool := fleek.InstanceAddress("pool", "locked")
	account := fleek.InstanceAddress("dev-account", "dev-1")
	for i := 0; i < n; i++ {
		_, err := db.Append(&logdb.Op{
			Time:     uint64(1000 + i),
			Instance: pool,
			Kind:     logdb.KindStake,
			Account:  account,
			Amount:   big.NewInt(int64(i + 1)),
		})
		require.NoError(t, err)
	}
}

func filterOps(t *testing.T, ts *httptest.Server, filter interface{}) (int, []byte) {
	payload, err := json.Marshal(filter)
	require.NoError(t, err)
	res, err := http.Post(ts.URL+"/logs/op", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, body
}

func TestFilterAll(t *testing.T) {
	ts, db := newEventsServer(t)
	appendOps(t, db, 3)

	code, body := filterOps(t, ts, &logdb.Filter{})
	require.Equal(t, http.StatusOK, code)

	var ops []*logdb.Op
	require.NoError(t, json.Unmarshal(body, &ops))
	require.Len(t, ops, 3)
	assert.Equal(t, uint64(1), ops[0].Seq)
	assert.Equal(t, logdb.KindStake, ops[0].Kind)
}

func TestFilterRange(t *testing.T) {
	ts, db := newEventsServer(t)
	appendOps(t, db, 5)

	code, body := filterOps(t, ts, &logdb.Filter{
		Range:   &logdb.Range{Unit: logdb.Seq, From: 2, To: 3},
		Options: &logdb.Options{Limit: testLimit},
	})
	require.Equal(t, http.StatusOK, code)

	var ops []*logdb.Op
	require.NoError(t, json.Unmarshal(body, &ops))
	require.Len(t, ops, 2)
	assert.Equal(t, uint64(2), ops[0].Seq)
	assert.Equal(t, uint64(3), ops[1].Seq)

	// an omitted upper bound is open-ended
	code, body = filterOps(t, ts, &logdb.Filter{
		Range:   &logdb.Range{Unit: logdb.Seq, From: 4},
		Options: &logdb.Options{Limit: testLimit},
	})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &ops))
	require.Len(t, ops, 2)
}

func TestFilterDescending(t *testing.T) {
	ts, db := newEventsServer(t)
	appendOps(t, db, 3)

	code, body := filterOps(t, ts, &logdb.Filter{
		Order:   logdb.DESC,
		Options: &logdb.Options{Limit: testLimit},
	})
	require.Equal(t, http.StatusOK, code)

	var ops []*logdb.Op
	require.NoError(t, json.Unmarshal(body, &ops))
	require.Len(t, ops, 3)
	assert.Equal(t, uint64(3), ops[0].Seq)
}

func TestFilterLimits(t *testing.T) {
	ts, db := newEventsServer(t)
	appendOps(t, db, testLimit+1)

	// explicit limit above the server cap
	code, _ := filterOps(t, ts, &logdb.Filter{
		Options: &logdb.Options{Limit: testLimit + 1},
	})
	assert.Equal(t, http.StatusForbidden, code)

	// default options: too many matches is a pagination error
	code, _ = filterOps(t, ts, &logdb.Filter{})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = filterOps(t, ts, &logdb.Filter{
		Range: &logdb.Range{Unit: logdb.Seq, From: 3, To: 2},
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = filterOps(t, ts, map[string]interface{}{
		"criteriaSet": []interface{}{nil},
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestFilterCriteria(t *testing.T) {
	ts, db := newEventsServer(t)
	pool := fleek.InstanceAddress("pool", "locked")
	alice := fleek.InstanceAddress("dev-account", "dev-1")
	bob := fleek.InstanceAddress("dev-account", "dev-2")
	for i, op := range []*logdb.Op{
		{Kind: logdb.KindStake, Instance: pool, Account: alice, Amount: big.NewInt(1)},
		{Kind: logdb.KindStake, Instance: pool, Account: bob, Amount: big.NewInt(2)},
		{Kind: logdb.KindClaim, Instance: pool, Account: alice, Amount: big.NewInt(3)},
	} {
		op.Time = uint64(1000 + i)
		_, err := db.Append(op)
		require.NoError(t, err)
	}

	code, body := filterOps(t, ts, &logdb.Filter{
		CriteriaSet: []*logdb.Criteria{{Account: &alice, Kind: logdb.KindStake}},
		Options:     &logdb.Options{Limit: testLimit},
	})
	require.Equal(t, http.StatusOK, code)

	var ops []*logdb.Op
	require.NoError(t, json.Unmarshal(body, &ops))
	require.Len(t, ops, 1)
	assert.Equal(t, alice, ops[0].Account)
}
