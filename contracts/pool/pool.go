// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool implements the staking pool: deposits of the stake asset
// accrue rewards in the reward asset, streamed at a rate fixed per funding
// period. Withdrawals pass a timing gate chosen when the pool is
// provisioned.
package pool

import (
	"math/big"

	"github.com/fleek-platform/fleek-contracts/contracts/authority"
	"github.com/fleek-platform/fleek-contracts/contracts/params"
	"github.com/fleek-platform/fleek-contracts/contracts/pool/accrual"
	"github.com/fleek-platform/fleek-contracts/contracts/pool/gate"
	"github.com/fleek-platform/fleek-contracts/contracts/pool/ledger"
	"github.com/fleek-platform/fleek-contracts/contracts/pool/schedule"
	"github.com/fleek-platform/fleek-contracts/contracts/reverts"
	"github.com/fleek-platform/fleek-contracts/contracts/solidity"
	"github.com/fleek-platform/fleek-contracts/contracts/token"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/log"
	"github.com/fleek-platform/fleek-contracts/state"
)

var logger = log.WithContext("pkg", "pool")

// Options carries a pool's collaborators and construction parameters.
type Options struct {
	StakeToken  *token.Token
	RewardToken *token.Token
	Authority   *authority.Authority
	Params      *params.Params

	// GateKind selects the withdrawal gate, GatePeriod its lock or
	// cooldown length in seconds. Both are fixed for the pool's lifetime.
	GateKind   string
	GatePeriod uint64
}

// Pool binds the staking pool at the given instance address.
type Pool struct {
	context *solidity.Context

	stakeToken  *token.Token
	rewardToken *token.Token
	authority   *authority.Authority
	params      *params.Params

	ledger   *ledger.Service
	accrual  *accrual.Service
	schedule *schedule.Service
	gate     gate.Gate
}

// New binds a pool instance.
func New(addr fleek.Address, st *state.State, opts *Options) (*Pool, error) {
	sctx := solidity.NewContext(addr, st)
	g, err := gate.New(sctx, opts.GateKind, opts.GatePeriod)
	if err != nil {
		return nil, err
	}
	return &Pool{
		context:     sctx,
		stakeToken:  opts.StakeToken,
		rewardToken: opts.RewardToken,
		authority:   opts.Authority,
		params:      opts.Params,
		ledger:      ledger.New(sctx),
		accrual:     accrual.New(sctx),
		schedule:    schedule.New(sctx),
		gate:        g,
	}, nil
}

// Initialize seeds the pool's storage when it is first provisioned.
func (p *Pool) Initialize(rewardsDuration uint64) error {
	return p.schedule.InitDuration(rewardsDuration)
}

//
// Getters - no state change
//

// Address returns the pool's instance address.
func (p *Pool) Address() fleek.Address {
	return p.context.Address()
}

// StakeToken returns the stake asset's address.
func (p *Pool) StakeToken() fleek.Address {
	return p.stakeToken.Address()
}

// RewardToken returns the reward asset's address.
func (p *Pool) RewardToken() fleek.Address {
	return p.rewardToken.Address()
}

// GateKind returns the withdrawal gate's kind tag.
func (p *Pool) GateKind() string {
	return p.gate.Kind()
}

// TotalStaked returns the sum of all staked balances.
func (p *Pool) TotalStaked() (*big.Int, error) {
	return p.ledger.TotalStaked()
}

// BalanceOf returns the account's staked balance.
func (p *Pool) BalanceOf(account fleek.Address) (*big.Int, error) {
	return p.ledger.BalanceOf(account)
}

// RewardRate returns the reward units distributed per second.
func (p *Pool) RewardRate() (*big.Int, error) {
	return p.schedule.RewardRate()
}

// PeriodFinish returns when the running funding period ends.
func (p *Pool) PeriodFinish() (uint64, error) {
	return p.schedule.PeriodFinish()
}

// RewardsDuration returns the period length applied to future fundings.
func (p *Pool) RewardsDuration() (uint64, error) {
	return p.schedule.Duration()
}

// LastTimeRewardApplicable returns now clamped to the period end.
func (p *Pool) LastTimeRewardApplicable(now uint64) (uint64, error) {
	return p.schedule.LastApplicable(now)
}

// RewardForDuration returns the total reward distributed over one full
// period at the current rate.
func (p *Pool) RewardForDuration() (*big.Int, error) {
	rate, err := p.schedule.RewardRate()
	if err != nil {
		return nil, err
	}
	duration, err := p.schedule.Duration()
	if err != nil {
		return nil, err
	}
	return rate.Mul(rate, new(big.Int).SetUint64(duration)), nil
}

// RewardPerToken returns the accumulator as of now: the total reward one
// staked unit has earned since pool creation, scaled by 1e18.
func (p *Pool) RewardPerToken(now uint64) (*big.Int, error) {
	lastApplicable, err := p.schedule.LastApplicable(now)
	if err != nil {
		return nil, err
	}
	rate, err := p.schedule.RewardRate()
	if err != nil {
		return nil, err
	}
	total, err := p.ledger.TotalStaked()
	if err != nil {
		return nil, err
	}
	return p.accrual.RewardPerToken(lastApplicable, rate, total)
}

// Earned returns the reward the account would receive by claiming at now.
func (p *Pool) Earned(account fleek.Address, now uint64) (*big.Int, error) {
	index, err := p.RewardPerToken(now)
	if err != nil {
		return nil, err
	}
	balance, err := p.ledger.BalanceOf(account)
	if err != nil {
		return nil, err
	}
	return p.accrual.Earned(account, balance, index)
}

// GateStatus reports the account's standing with the withdrawal gate.
func (p *Pool) GateStatus(account fleek.Address) (*gate.Status, error) {
	return p.gate.Status(account)
}

// IsPaused reports whether stake intake is suspended.
func (p *Pool) IsPaused() (bool, error) {
	return p.params.IsPaused(p.Address())
}

//
// Mutations. The node serializes these per pool; each runs against a fresh
// state that is committed only on success.
//

// Stake moves amount of the stake asset from the caller into custody and
// credits the caller's staked balance. The caller must have approved the
// pool for at least amount beforehand.
func (p *Pool) Stake(caller fleek.Address, amount *big.Int, now uint64) error {
	logger.Debug("staking", "account", caller, "amount", amount)

	if amount == nil || amount.Sign() <= 0 {
		return reverts.New(reverts.ErrInvalidAmount, "stake amount must be positive")
	}
	paused, err := p.params.IsPaused(p.Address())
	if err != nil {
		return err
	}
	if paused {
		return reverts.New(reverts.ErrSuspended, "pool intake suspended")
	}
	if err := p.settle(&caller, now); err != nil {
		return err
	}
	if err := p.ledger.Credit(caller, amount); err != nil {
		return err
	}
	if err := p.gate.RecordStake(caller, now); err != nil {
		return err
	}
	if err := p.stakeToken.TransferFrom(p.Address(), caller, p.Address(), amount); err != nil {
		logger.Info("stake failed", "account", caller, "error", err)
		return err
	}

	logger.Info("staked", "account", caller, "amount", amount)
	return nil
}

// Withdraw returns amount of the stake asset to the caller. Subject to the
// gate's policy; the cooldown gate refuses direct withdrawals.
func (p *Pool) Withdraw(caller fleek.Address, amount *big.Int, now uint64) error {
	logger.Debug("withdrawing", "account", caller, "amount", amount)

	if err := p.withdraw(caller, amount, now); err != nil {
		logger.Info("withdraw failed", "account", caller, "error", err)
		return err
	}

	logger.Info("withdrew", "account", caller, "amount", amount)
	return nil
}

func (p *Pool) withdraw(caller fleek.Address, amount *big.Int, now uint64) error {
	if amount == nil || amount.Sign() <= 0 {
		return reverts.New(reverts.ErrInvalidAmount, "withdraw amount must be positive")
	}
	if err := p.gate.CheckWithdraw(caller, now); err != nil {
		return err
	}
	if err := p.settle(&caller, now); err != nil {
		return err
	}
	if err := p.ledger.Debit(caller, amount); err != nil {
		return err
	}
	return p.stakeToken.Transfer(p.Address(), caller, amount)
}

// RequestWithdrawal announces a withdrawal of amount, starting the cooldown
// clock. A new request replaces any pending one; the lock gate refuses
// requests altogether.
func (p *Pool) RequestWithdrawal(caller fleek.Address, amount *big.Int, now uint64) error {
	logger.Debug("requesting withdrawal", "account", caller, "amount", amount)

	if amount == nil {
		amount = new(big.Int)
	}
	if err := p.settle(&caller, now); err != nil {
		return err
	}
	balance, err := p.ledger.BalanceOf(caller)
	if err != nil {
		return err
	}
	if err := p.gate.RecordRequest(caller, amount, balance, now); err != nil {
		logger.Info("request withdrawal failed", "account", caller, "error", err)
		return err
	}

	logger.Info("requested withdrawal", "account", caller, "amount", amount)
	return nil
}

// CompleteWithdrawal executes the caller's pending request once its cooldown
// elapsed, returning the amount paid out.
func (p *Pool) CompleteWithdrawal(caller fleek.Address, now uint64) (*big.Int, error) {
	logger.Debug("completing withdrawal", "account", caller)

	amount, err := p.completeWithdrawal(caller, now)
	if err != nil {
		logger.Info("complete withdrawal failed", "account", caller, "error", err)
		return nil, err
	}

	logger.Info("completed withdrawal", "account", caller, "amount", amount)
	return amount, nil
}

func (p *Pool) completeWithdrawal(caller fleek.Address, now uint64) (*big.Int, error) {
	if err := p.settle(&caller, now); err != nil {
		return nil, err
	}
	amount, err := p.gate.ResolveRequest(caller, now)
	if err != nil {
		return nil, err
	}
	if err := p.ledger.Debit(caller, amount); err != nil {
		return nil, err
	}
	if err := p.stakeToken.Transfer(p.Address(), caller, amount); err != nil {
		return nil, err
	}
	return amount, nil
}

// GetReward pays out the caller's settled reward and returns the amount.
// Claiming with nothing accrued still settles, then moves nothing.
func (p *Pool) GetReward(caller fleek.Address, now uint64) (*big.Int, error) {
	logger.Debug("claiming reward", "account", caller)

	amount, err := p.claim(caller, now)
	if err != nil {
		logger.Info("claim failed", "account", caller, "error", err)
		return nil, err
	}

	logger.Info("claimed reward", "account", caller, "amount", amount)
	return amount, nil
}

func (p *Pool) claim(caller fleek.Address, now uint64) (*big.Int, error) {
	if err := p.settle(&caller, now); err != nil {
		return nil, err
	}
	amount, err := p.accrual.ClaimReward(caller)
	if err != nil {
		return nil, err
	}
	if amount.Sign() > 0 {
		if err := p.rewardToken.Transfer(p.Address(), caller, amount); err != nil {
			return nil, err
		}
	}
	return amount, nil
}

// Exit withdraws the caller's whole position and claims any settled reward
// in one operation. Under the cooldown gate the principal part executes the
// pending request; under the lock gate it withdraws the full balance.
func (p *Pool) Exit(caller fleek.Address, now uint64) (withdrawn, claimed *big.Int, err error) {
	logger.Debug("exiting", "account", caller)

	if p.gate.Kind() == gate.KindPostRequestCooldown {
		withdrawn, err = p.completeWithdrawal(caller, now)
	} else {
		withdrawn, err = p.ledger.BalanceOf(caller)
		if err == nil {
			err = p.withdraw(caller, withdrawn, now)
		}
	}
	if err != nil {
		logger.Info("exit failed", "account", caller, "error", err)
		return nil, nil, err
	}

	claimed, err = p.claim(caller, now)
	if err != nil {
		logger.Info("exit failed", "account", caller, "error", err)
		return nil, nil, err
	}

	logger.Info("exited", "account", caller, "withdrawn", withdrawn, "claimed", claimed)
	return withdrawn, claimed, nil
}

// NotifyReward pulls amount of the reward asset from the caller and folds it
// into the distribution schedule, starting a fresh period. The caller needs
// the funder role and must have approved the pool beforehand. Funding is
// deliberately possible while paused.
func (p *Pool) NotifyReward(caller fleek.Address, amount *big.Int, now uint64) error {
	logger.Debug("notifying reward", "funder", caller, "amount", amount)

	if err := p.requireRole(authority.RoleFunder, caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return reverts.New(reverts.ErrInvalidAmount, "reward amount must be positive")
	}
	if err := p.settle(nil, now); err != nil {
		return err
	}
	if err := p.rewardToken.TransferFrom(p.Address(), caller, p.Address(), amount); err != nil {
		logger.Info("notify reward failed", "funder", caller, "error", err)
		return err
	}
	// custody counts every reward asset unit held by the pool; when stake
	// and reward assets are identical this includes staked principal
	custody, err := p.rewardToken.BalanceOf(p.Address())
	if err != nil {
		return err
	}
	rate, err := p.schedule.Notify(amount, custody, now)
	if err != nil {
		logger.Info("notify reward failed", "funder", caller, "error", err)
		return err
	}
	if err := p.accrual.AdvanceTime(now); err != nil {
		return err
	}

	logger.Info("notified reward", "funder", caller, "amount", amount, "rate", rate)
	return nil
}

// SetRewardsDuration changes the period length used by future fundings.
// Admin only, and only between periods.
func (p *Pool) SetRewardsDuration(caller fleek.Address, duration, now uint64) error {
	logger.Debug("setting rewards duration", "admin", caller, "duration", duration)

	if err := p.requireRole(authority.RoleAdmin, caller); err != nil {
		return err
	}
	if err := p.schedule.SetDuration(duration, now); err != nil {
		logger.Info("set rewards duration failed", "admin", caller, "error", err)
		return err
	}

	logger.Info("set rewards duration", "admin", caller, "duration", duration)
	return nil
}

// RecoverForeignAsset sweeps amount of the given asset out of the pool to
// the caller. The stake asset is off limits; anything else, the reward
// asset included, can be recovered. Admin only.
func (p *Pool) RecoverForeignAsset(caller, asset fleek.Address, amount *big.Int) error {
	logger.Debug("recovering foreign asset", "admin", caller, "asset", asset, "amount", amount)

	if err := p.requireRole(authority.RoleAdmin, caller); err != nil {
		return err
	}
	if asset == p.stakeToken.Address() {
		return reverts.New(reverts.ErrForbiddenAsset, "cannot recover the stake asset")
	}
	if err := token.New(asset, p.context.State()).Transfer(p.Address(), caller, amount); err != nil {
		logger.Info("recover foreign asset failed", "admin", caller, "error", err)
		return err
	}

	logger.Info("recovered foreign asset", "admin", caller, "asset", asset, "amount", amount)
	return nil
}

// SetPaused suspends or resumes stake intake. Withdrawals, claims and
// fundings stay open while paused. Admin only.
func (p *Pool) SetPaused(caller fleek.Address, paused bool) error {
	if err := p.requireRole(authority.RoleAdmin, caller); err != nil {
		return err
	}
	if err := p.params.SetPaused(p.Address(), paused); err != nil {
		return err
	}

	logger.Info("set paused", "admin", caller, "paused", paused)
	return nil
}

// settle freezes the accumulator at min(now, periodFinish) and, when an
// account is given, credits its earnings up to that point. Every mutation of
// balances or schedule runs this first; it is the only place accrual
// bookkeeping is written.
func (p *Pool) settle(account *fleek.Address, now uint64) error {
	lastApplicable, err := p.schedule.LastApplicable(now)
	if err != nil {
		return err
	}
	rate, err := p.schedule.RewardRate()
	if err != nil {
		return err
	}
	total, err := p.ledger.TotalStaked()
	if err != nil {
		return err
	}
	index, err := p.accrual.Checkpoint(lastApplicable, rate, total)
	if err != nil {
		return err
	}
	if account == nil {
		return nil
	}
	balance, err := p.ledger.BalanceOf(*account)
	if err != nil {
		return err
	}
	return p.accrual.SettleAccount(*account, balance, index)
}

func (p *Pool) requireRole(role string, caller fleek.Address) error {
	ok, err := p.authority.HasRole(role, caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.New(reverts.ErrUnauthorized, "%s role required", role)
	}
	return nil
}
