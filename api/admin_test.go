// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startAdmin(t *testing.T) (string, *slog.LevelVar, *atomic.Bool) {
	var logLevel slog.LevelVar
	logLevel.Set(slog.LevelInfo)
	logRequests := new(atomic.Bool)

	url, cancel, err := NewAdmin("127.0.0.1:0", &logLevel, logRequests).Start()
	require.NoError(t, err)
	t.Cleanup(cancel)
	return url, &logLevel, logRequests
}

func TestAdminLogLevel(t *testing.T) {
	url, logLevel, _ := startAdmin(t)

	res, err := http.Get(url + "/loglevel")
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var reply logLevelResponse
	require.NoError(t, json.Unmarshal(body, &reply))
	assert.Equal(t, "info", reply.CurrentLevel)

	res, err = http.Post(url+"/loglevel", "application/json",
		bytes.NewReader([]byte(`{"level":"debug"}`)))
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, slog.LevelDebug, logLevel.Level())

	res, err = http.Post(url+"/loglevel", "application/json",
		bytes.NewReader([]byte(`{"level":"shouting"}`)))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, slog.LevelDebug, logLevel.Level())
}

func TestAdminRequestLoggerSwitch(t *testing.T) {
	url, _, logRequests := startAdmin(t)

	res, err := http.Post(url+"/apilogs", "application/json",
		bytes.NewReader([]byte(`{"enabled":true}`)))
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, logRequests.Load())

	res, err = http.Get(url + "/apilogs")
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)

	var reply apiLogRequests
	require.NoError(t, json.Unmarshal(body, &reply))
	require.NotNil(t, reply.Enabled)
	assert.True(t, *reply.Enabled)

	res, err = http.Post(url+"/apilogs", "application/json",
		bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
