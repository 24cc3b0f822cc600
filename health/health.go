// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package health tracks the daemon's liveness signals: the last committed
// operation, the wall-clock sync status and the outcome of the latest
// ledger audit.
package health

import (
	"sync"
	"time"
)

// Commit describes the most recently committed operation.
type Commit struct {
	Seq       uint64     `json:"seq"`
	Timestamp *time.Time `json:"timestamp"`
}

// Status is the health snapshot served by the API.
type Status struct {
	Healthy     bool       `json:"healthy"`
	LastCommit  *Commit    `json:"lastCommit"`
	ClockSynced bool       `json:"clockSynced"`
	ClockOffset int64      `json:"clockOffsetMillis"`
	AuditOK     bool       `json:"auditOk"`
	LastAudit   *time.Time `json:"lastAudit"`
}

// Health collects signals from the node and housekeeping loops.
type Health struct {
	lock sync.RWMutex

	lastCommitSeq  uint64
	lastCommitTime time.Time

	clockChecked bool
	clockSynced  bool
	clockOffset  time.Duration

	audited   bool
	auditOK   bool
	lastAudit time.Time
}

// CommitHappened records that the operation with the given sequence was
// committed.
func (h *Health) CommitHappened(seq uint64) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastCommitSeq = seq
	h.lastCommitTime = time.Now()
}

// ClockStatus records the latest NTP offset probe.
func (h *Health) ClockStatus(offset time.Duration, synced bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.clockChecked = true
	h.clockSynced = synced
	h.clockOffset = offset
}

// AuditStatus records the outcome of a ledger audit.
func (h *Health) AuditStatus(ok bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.audited = true
	h.auditOK = ok
	h.lastAudit = time.Now()
}

// Status returns the current health snapshot. Signals not yet collected
// count as healthy; only a probe that actually reported a problem marks the
// daemon unhealthy.
func (h *Health) Status() (*Status, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	clockOK := !h.clockChecked || h.clockSynced
	auditOK := !h.audited || h.auditOK

	var commit *Commit
	if !h.lastCommitTime.IsZero() {
		ts := h.lastCommitTime
		commit = &Commit{Seq: h.lastCommitSeq, Timestamp: &ts}
	}
	var lastAudit *time.Time
	if h.audited {
		ts := h.lastAudit
		lastAudit = &ts
	}

	return &Status{
		Healthy:     clockOK && auditOK,
		LastCommit:  commit,
		ClockSynced: clockOK,
		ClockOffset: h.clockOffset.Milliseconds(),
		AuditOK:     auditOK,
		LastAudit:   lastAudit,
	}, nil
}
