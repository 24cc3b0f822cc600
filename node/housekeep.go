// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/robfig/cron/v3"
)

const ntpHost = "pool.ntp.org"

// Run starts the housekeeping loops and blocks until ctx is done. Operations
// do not require Run; a node without it just reports no clock or audit
// signals.
func (n *Node) Run(ctx context.Context) error {
	if n.opts.AuditSchedule != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(n.opts.AuditSchedule, func() {
			if _, err := n.Audit(ctx); err != nil {
				logger.Error("scheduled audit failed", "error", err)
			}
		}); err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	n.goes.Go(func() { n.houseKeeping(ctx) })

	<-ctx.Done()
	n.goes.Wait()
	return nil
}

func (n *Node) houseKeeping(ctx context.Context) {
	logger.Debug("enter house keeping")

	clockSyncTicker := time.NewTicker(10 * time.Minute)
	cacheStatsTicker := time.NewTicker(time.Minute)

	defer func() {
		logger.Debug("leave house keeping")
		clockSyncTicker.Stop()
		cacheStatsTicker.Stop()
	}()

	// the accrual engine trusts the wall clock; probe it right away
	n.checkClockOffset()

	for {
		select {
		case <-ctx.Done():
			return
		case <-clockSyncTicker.C:
			n.checkClockOffset()
		case <-cacheStatsTicker.C:
			if changed, hit, miss := n.stater.CacheStats(); changed {
				logger.Debug("slot cache stats", "hit", hit, "miss", miss)
			}
		}
	}
}

func (n *Node) checkClockOffset() {
	resp, err := ntp.Query(ntpHost)
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	synced := offset <= n.opts.ClockTolerance
	if !synced {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
	n.health.ClockStatus(resp.ClockOffset, synced)
}
