// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusDefaultsHealthy(t *testing.T) {
	var h Health

	status, err := h.Status()
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Nil(t, status.LastCommit)
	assert.Nil(t, status.LastAudit)
}

func TestCommitHappened(t *testing.T) {
	var h Health
	h.CommitHappened(42)

	status, err := h.Status()
	require.NoError(t, err)
	require.NotNil(t, status.LastCommit)
	assert.Equal(t, uint64(42), status.LastCommit.Seq)
	assert.WithinDuration(t, time.Now(), *status.LastCommit.Timestamp, time.Second)
}

func TestClockStatus(t *testing.T) {
	var h Health

	h.ClockStatus(2*time.Second, false)
	status, err := h.Status()
	require.NoError(t, err)
	assert.False(t, status.Healthy)
	assert.False(t, status.ClockSynced)
	assert.Equal(t, int64(2000), status.ClockOffset)

	h.ClockStatus(10*time.Millisecond, true)
	status, err = h.Status()
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.True(t, status.ClockSynced)
}

func TestAuditStatus(t *testing.T) {
	var h Health

	h.AuditStatus(false)
	status, err := h.Status()
	require.NoError(t, err)
	assert.False(t, status.Healthy)
	assert.False(t, status.AuditOK)
	require.NotNil(t, status.LastAudit)

	h.AuditStatus(true)
	status, err = h.Status()
	require.NoError(t, err)
	assert.True(t, status.Healthy)
}
