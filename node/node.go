// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node hosts the ledger: it owns the state store, executes
// operations one at a time against a fresh state that commits atomically,
// journals every commit and keeps the daemon's housekeeping loops running.
package node

import (
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/fleek-platform/fleek-contracts/co"
	"github.com/fleek-platform/fleek-contracts/contracts/pool"
	"github.com/fleek-platform/fleek-contracts/contracts/reverts"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/genesis"
	"github.com/fleek-platform/fleek-contracts/health"
	"github.com/fleek-platform/fleek-contracts/kv"
	"github.com/fleek-platform/fleek-contracts/log"
	"github.com/fleek-platform/fleek-contracts/logdb"
	"github.com/fleek-platform/fleek-contracts/metrics"
	"github.com/fleek-platform/fleek-contracts/state"
)

var logger = log.WithContext("pkg", "node")

var (
	metricOps        = metrics.LazyLoadCounterVec("op_count", []string{"kind", "status"})
	metricOpDuration = metrics.LazyLoadHistogramVec("op_duration_ms", []string{"kind"}, metrics.Bucket10s)
	metricJournalGap = metrics.LazyLoadCounter("journal_write_failures_count")
)

var genesisIDKey = []byte("genesis-id")

// Options tunes a node.
type Options struct {
	// CacheMB sizes the state slot cache.
	CacheMB int

	// Now supplies the operation clock; defaults to the wall clock. It is
	// read exactly once per operation.
	Now func() uint64

	// ClockTolerance is the largest acceptable NTP offset before the node
	// reports itself out of sync.
	ClockTolerance time.Duration

	// AuditSchedule is a cron expression for the ledger audit; empty
	// disables scheduled audits.
	AuditSchedule string
}

// Node executes ledger operations serially and owns all persistent state.
type Node struct {
	gene   *genesis.Genesis
	stater *state.Stater
	logDB  *logdb.LogDB
	health *health.Health
	opts   Options

	// lock serializes mutating operations; busy is the explicit
	// operation-in-progress flag per contract instance, held across the
	// whole operation including asset transfers.
	lock sync.Mutex
	busy map[fleek.Address]*atomic.Bool

	feed    co.Signal
	lastSeq atomic.Uint64
	goes    co.Goes
}

// New opens a node over the given store. A fresh store is seeded from the
// genesis; reopening a store with a different genesis ID fails.
func New(gene *genesis.Genesis, store kv.GetPutter, logDB *logdb.LogDB, h *health.Health, opts Options) (*Node, error) {
	if opts.CacheMB < 1 {
		opts.CacheMB = 16
	}
	if opts.Now == nil {
		opts.Now = func() uint64 { return uint64(time.Now().Unix()) }
	}
	if opts.ClockTolerance == 0 {
		opts.ClockTolerance = 5 * time.Second
	}

	stater := state.NewStater(store, opts.CacheMB)

	n := &Node{
		gene:   gene,
		stater: stater,
		logDB:  logDB,
		health: h,
		opts:   opts,
		busy:   make(map[fleek.Address]*atomic.Bool),
	}

	if err := n.initGenesis(store); err != nil {
		return nil, err
	}

	seq, err := logDB.MaxSeq()
	if err != nil {
		return nil, err
	}
	n.lastSeq.Store(seq)

	return n, nil
}

func (n *Node) initGenesis(store kv.GetPutter) error {
	stored, err := store.Get(genesisIDKey)
	if err != nil && !store.IsNotFound(err) {
		return errors.Wrap(err, "read genesis id")
	}
	id := n.gene.ID()
	if err == nil {
		if fleek.BytesToBytes32(stored) != id {
			return errors.Errorf("store belongs to another network: has genesis %s, want %s",
				fleek.BytesToBytes32(stored), id)
		}
		return nil
	}

	st := n.stater.NewState()
	if err := n.gene.Build(st); err != nil {
		return err
	}
	if err := st.Stage().Commit(); err != nil {
		return err
	}
	if err := store.Put(genesisIDKey, id.Bytes()); err != nil {
		return errors.Wrap(err, "write genesis id")
	}
	logger.Info("genesis state committed", "network", n.gene.Name(), "id", id)
	return nil
}

// Genesis returns the node's genesis.
func (n *Node) Genesis() *genesis.Genesis {
	return n.gene
}

// LogDB exposes the operations journal for queries.
func (n *Node) LogDB() *logdb.LogDB {
	return n.logDB
}

// Now returns the node clock's current reading.
func (n *Node) Now() uint64 {
	return n.opts.Now()
}

// LastSeq returns the sequence of the most recently journaled operation.
func (n *Node) LastSeq() uint64 {
	return n.lastSeq.Load()
}

// OpFeed signals whenever an operation commits; subscribers re-read the
// journal from their cursor.
func (n *Node) OpFeed() *co.Signal {
	return &n.feed
}

// PoolConfig finds a configured pool by name.
func (n *Node) PoolConfig(name string) (*genesis.PoolConfig, error) {
	for i := range n.gene.Config().Pools {
		pc := &n.gene.Config().Pools[i]
		if pc.Name == name {
			return pc, nil
		}
	}
	return nil, errors.Errorf("no such pool %q", name)
}

// bindPool binds the named pool against the given state.
func (n *Node) bindPool(name string, st *state.State) (*pool.Pool, *genesis.PoolConfig, error) {
	pc, err := n.PoolConfig(name)
	if err != nil {
		return nil, nil, err
	}
	opts, err := genesis.PoolOptions(n.gene.Config(), pc, st)
	if err != nil {
		return nil, nil, err
	}
	p, err := pool.New(pc.Address(), st, opts)
	if err != nil {
		return nil, nil, err
	}
	return p, pc, nil
}

func (n *Node) busyFlag(instance fleek.Address) *atomic.Bool {
	// callers hold n.lock
	flag, ok := n.busy[instance]
	if !ok {
		flag = new(atomic.Bool)
		n.busy[instance] = flag
	}
	return flag
}

// opResult is what an operation reports for the journal.
type opResult struct {
	account fleek.Address
	amount  *big.Int

	// claimed is set by composite operations that also paid out a reward;
	// it journals as an extra claim row.
	claimed *big.Int

	// set for pool operations
	pool *pool.Pool
}

// execute runs one mutating operation: single clock read, fresh state,
// commit on success only, then journal, health and feed. The per-instance
// busy flag guards against reentrant entry for the whole duration, asset
// transfers included.
func (n *Node) execute(instance fleek.Address, kind string, fn func(st *state.State, now uint64) (*opResult, error)) (*logdb.Op, error) {
	n.lock.Lock()
	defer n.lock.Unlock()

	flag := n.busyFlag(instance)
	if !flag.CompareAndSwap(false, true) {
		return nil, reverts.New(reverts.ErrBusy, "instance %s busy", instance)
	}
	defer flag.Store(false)

	now := n.opts.Now()
	began := time.Now()
	st := n.stater.NewState()

	result, err := fn(st, now)
	if err != nil {
		metricOps().AddWithLabel(1, map[string]string{"kind": kind, "status": "reverted"})
		return nil, err
	}

	op := &logdb.Op{
		Time:     now,
		Instance: instance,
		Kind:     kind,
		Account:  result.account,
		Amount:   result.amount,
	}
	if result.pool != nil {
		if op.TotalStaked, err = result.pool.TotalStaked(); err != nil {
			return nil, err
		}
		if op.RewardRate, err = result.pool.RewardRate(); err != nil {
			return nil, err
		}
	}

	if err := st.Stage().Commit(); err != nil {
		metricOps().AddWithLabel(1, map[string]string{"kind": kind, "status": "failed"})
		return nil, err
	}

	recorded, err := n.logDB.Append(op)
	if err != nil {
		// the state commit stands; the journal is an audit trail, not the
		// source of truth
		metricJournalGap().Add(1)
		logger.Error("journal append failed", "kind", kind, "error", err)
		recorded = op
	} else {
		lastSeq := recorded.Seq
		if result.claimed != nil && result.claimed.Sign() > 0 {
			claim := *op
			claim.Kind = logdb.KindClaim
			claim.Amount = result.claimed
			if claimRow, err := n.logDB.Append(&claim); err != nil {
				metricJournalGap().Add(1)
				logger.Error("journal append failed", "kind", logdb.KindClaim, "error", err)
			} else {
				lastSeq = claimRow.Seq
			}
		}
		n.lastSeq.Store(lastSeq)
		n.health.CommitHappened(lastSeq)
		n.feed.Broadcast()
	}

	metricOps().AddWithLabel(1, map[string]string{"kind": kind, "status": "committed"})
	metricOpDuration().ObserveWithLabels(time.Since(began).Milliseconds(), map[string]string{"kind": kind})
	return recorded, nil
}
