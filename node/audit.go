// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"math/big"
	"sync"

	"github.com/fleek-platform/fleek-contracts/co"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/logdb"
)

// AuditReport reconciles one pool's journal against its ledger state.
type AuditReport struct {
	Pool string `json:"pool"`

	TotalStaked   *big.Int `json:"totalStaked"`
	JournalStaked *big.Int `json:"journalStaked"`
	Funded        *big.Int `json:"funded"`
	Claimed       *big.Int `json:"claimed"`

	// Conserved: state totalStaked equals the journal's net staked sum.
	Conserved bool `json:"conserved"`
	// WithinFunding: cumulative claims do not exceed cumulative funding.
	WithinFunding bool `json:"withinFunding"`
	// RateBounded: the rewards still owed through periodFinish are covered
	// by distributable reward custody.
	RateBounded bool `json:"rateBounded"`
}

// OK reports whether every check passed.
func (r *AuditReport) OK() bool {
	return r.Conserved && r.WithinFunding && r.RateBounded
}

// Audit reconciles every pool and feeds the outcome into health. It holds
// the node lock so the journal and state are read at one consistent point.
func (n *Node) Audit(ctx context.Context) ([]*AuditReport, error) {
	n.lock.Lock()
	defer n.lock.Unlock()

	pools := n.gene.Config().Pools
	reports := make([]*AuditReport, len(pools))
	errs := make([]error, len(pools))

	var wg sync.WaitGroup
	co.Parallel(func(enqueue co.Enqueue) {
		for i := range pools {
			i := i
			wg.Add(1)
			enqueue(func() {
				defer wg.Done()
				reports[i], errs[i] = n.auditPool(ctx, pools[i].Name)
			})
		}
		wg.Wait()
	})

	allOK := true
	for i := range reports {
		if errs[i] != nil {
			return nil, errs[i]
		}
		if !reports[i].OK() {
			allOK = false
			logger.Warn("audit check failed",
				"pool", reports[i].Pool,
				"conserved", reports[i].Conserved,
				"withinFunding", reports[i].WithinFunding,
				"rateBounded", reports[i].RateBounded)
		}
	}
	n.health.AuditStatus(allOK)
	return reports, nil
}

func (n *Node) auditPool(ctx context.Context, name string) (*AuditReport, error) {
	st := n.stater.NewState()
	p, pc, err := n.bindPool(name, st)
	if err != nil {
		return nil, err
	}

	report := &AuditReport{Pool: name}
	if report.TotalStaked, err = p.TotalStaked(); err != nil {
		return nil, err
	}
	rate, err := p.RewardRate()
	if err != nil {
		return nil, err
	}
	periodFinish, err := p.PeriodFinish()
	if err != nil {
		return nil, err
	}

	addr := pc.Address()
	sums, err := n.journalSums(ctx, addr)
	if err != nil {
		return nil, err
	}
	report.JournalStaked = sums.staked
	report.Funded = sums.funded
	report.Claimed = sums.claimed

	report.Conserved = report.TotalStaked.Cmp(sums.staked) == 0
	report.WithinFunding = sums.claimed.Cmp(sums.funded) <= 0

	// claims drain custody while the rate stands, so the funding-time guard
	// does not hold mid-period; check the remaining commitment instead
	report.RateBounded = true
	now := n.opts.Now()
	if rate.Sign() > 0 && periodFinish > now {
		rewardAddr, err := n.gene.Config().TokenAddress(pc.RewardToken)
		if err != nil {
			return nil, err
		}
		custody, err := n.TokenBalance(rewardAddr, addr)
		if err != nil {
			return nil, err
		}
		if pc.RewardToken == pc.StakeToken {
			// custody includes staked principal, which is not distributable
			custody = new(big.Int).Sub(custody, report.TotalStaked)
		}
		commitment := new(big.Int).Mul(rate, new(big.Int).SetUint64(periodFinish-now))
		report.RateBounded = commitment.Cmp(custody) <= 0
	}
	return report, nil
}

type poolSums struct {
	staked  *big.Int
	funded  *big.Int
	claimed *big.Int
}

// journalSums replays the pool's journal rows into net sums.
func (n *Node) journalSums(ctx context.Context, instance fleek.Address) (*poolSums, error) {
	ops, err := n.logDB.Filter(ctx, &logdb.Filter{
		CriteriaSet: []*logdb.Criteria{{Instance: &instance}},
	})
	if err != nil {
		return nil, err
	}

	sums := &poolSums{
		staked:  new(big.Int),
		funded:  new(big.Int),
		claimed: new(big.Int),
	}
	for _, op := range ops {
		if op.Amount == nil {
			continue
		}
		switch op.Kind {
		case logdb.KindStake:
			sums.staked.Add(sums.staked, op.Amount)
		case logdb.KindWithdraw, logdb.KindCompleteWithdrawal, logdb.KindExit:
			sums.staked.Sub(sums.staked, op.Amount)
		case logdb.KindFund:
			sums.funded.Add(sums.funded, op.Amount)
		case logdb.KindClaim:
			sums.claimed.Add(sums.claimed, op.Amount)
		}
	}
	return sums, nil
}
