// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package schedule manages the funding side of distribution: the reward
// rate, the end of the running period and the period length applied to
// future fundings.
package schedule

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/fleek-platform/fleek-contracts/contracts/reverts"
	"github.com/fleek-platform/fleek-contracts/contracts/solidity"
	"github.com/fleek-platform/fleek-contracts/fleek"
)

var (
	slotRewardRate      = fleek.BytesToBytes32([]byte("reward-rate"))
	slotPeriodFinish    = fleek.BytesToBytes32([]byte("period-finish"))
	slotRewardsDuration = fleek.BytesToBytes32([]byte("rewards-duration"))
)

// Service manages the reward distribution schedule.
type Service struct {
	rewardRate      *solidity.Uint256
	periodFinish    *solidity.Uint64
	rewardsDuration *solidity.Uint64
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		rewardRate:      solidity.NewUint256(sctx, slotRewardRate),
		periodFinish:    solidity.NewUint64(sctx, slotPeriodFinish),
		rewardsDuration: solidity.NewUint64(sctx, slotRewardsDuration),
	}
}

// RewardRate returns the rate of the running period, reward units per
// second. The rate of a finished period remains readable until the next
// funding replaces it.
func (s *Service) RewardRate() (*big.Int, error) {
	return s.rewardRate.Get()
}

// PeriodFinish returns the timestamp the running period ends at, zero before
// the first funding.
func (s *Service) PeriodFinish() (uint64, error) {
	return s.periodFinish.Get()
}

// Duration returns the period length applied to future fundings.
func (s *Service) Duration() (uint64, error) {
	return s.rewardsDuration.Get()
}

// LastApplicable clamps now to the end of the running period. Accrual never
// counts time past the funded horizon.
func (s *Service) LastApplicable(now uint64) (uint64, error) {
	finish, err := s.periodFinish.Get()
	if err != nil {
		return 0, err
	}
	if now < finish {
		return now, nil
	}
	return finish, nil
}

// InitDuration seeds the period length when the pool is provisioned,
// before any distribution has run.
func (s *Service) InitDuration(duration uint64) error {
	if duration == 0 {
		return reverts.New(reverts.ErrInvalidAmount, "rewards duration must be positive")
	}
	s.rewardsDuration.Set(duration)
	return nil
}

// SetDuration replaces the period length used by future fundings. The length
// of the running period cannot be changed.
func (s *Service) SetDuration(duration, now uint64) error {
	finish, err := s.periodFinish.Get()
	if err != nil {
		return err
	}
	if now <= finish {
		return reverts.New(reverts.ErrDurationLocked, "period running until %d", finish)
	}
	return s.InitDuration(duration)
}

// Notify folds amount into the schedule and starts a fresh period of the
// configured duration. Whatever the old rate would still have distributed is
// carried over into the new rate. Custody is the pool's reward asset balance
// after the funding transfer; the new rate may not exceed what custody can
// cover over one duration.
func (s *Service) Notify(amount, custody *big.Int, now uint64) (*big.Int, error) {
	if amount.Sign() <= 0 {
		return nil, reverts.New(reverts.ErrInvalidAmount, "reward amount must be positive")
	}
	duration, err := s.rewardsDuration.Get()
	if err != nil {
		return nil, err
	}
	if duration == 0 {
		return nil, reverts.New(reverts.ErrInvalidAmount, "rewards duration not initialized")
	}
	finish, err := s.periodFinish.Get()
	if err != nil {
		return nil, err
	}

	d := new(big.Int).SetUint64(duration)
	rate := new(big.Int).Set(amount)
	if now < finish {
		oldRate, err := s.rewardRate.Get()
		if err != nil {
			return nil, err
		}
		leftover := new(big.Int).SetUint64(finish - now)
		leftover.Mul(leftover, oldRate)
		rate.Add(rate, leftover)
		if rate.Cmp(math.MaxBig256) > 0 {
			return nil, reverts.New(reverts.ErrOverflow, "carried reward exceeds uint256")
		}
	}
	rate.Div(rate, d)

	// the rate must be attainable with assets actually held
	if rate.Cmp(new(big.Int).Div(custody, d)) > 0 {
		return nil, reverts.New(reverts.ErrRateTooHigh, "reward rate exceeds funded custody")
	}

	s.rewardRate.Set(rate)
	s.periodFinish.Set(now + duration)
	return rate, nil
}
