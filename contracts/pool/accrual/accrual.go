// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package accrual maintains the reward-per-token accumulator and the
// per-account records derived from it. The accumulator carries the reward
// earned by one staked unit since pool creation, scaled by 1e18; it only
// ever grows. All arithmetic stays within uint256 bounds or fails.
package accrual

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/fleek-platform/fleek-contracts/contracts/reverts"
	"github.com/fleek-platform/fleek-contracts/contracts/solidity"
	"github.com/fleek-platform/fleek-contracts/fleek"
)

var (
	slotRewardPerToken = fleek.BytesToBytes32([]byte("reward-per-token"))
	slotLastUpdateTime = fleek.BytesToBytes32([]byte("last-update-time"))
	slotRewards        = fleek.BytesToBytes32([]byte("account-rewards"))
)

// reward is the per-account accrual record. Paid is the accumulator value
// the account has been credited up to, Stored the settled but unclaimed
// reward.
type reward struct {
	Paid   *big.Int
	Stored *big.Int
}

// Service manages reward accrual bookkeeping.
type Service struct {
	rewardPerToken *solidity.Uint256
	lastUpdateTime *solidity.Uint64
	rewards        *solidity.Mapping[fleek.Address, reward]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		rewardPerToken: solidity.NewUint256(sctx, slotRewardPerToken),
		lastUpdateTime: solidity.NewUint64(sctx, slotLastUpdateTime),
		rewards:        solidity.NewMapping[fleek.Address, reward](sctx, slotRewards),
	}
}

// LastUpdateTime returns the timestamp of the latest checkpoint.
func (s *Service) LastUpdateTime() (uint64, error) {
	return s.lastUpdateTime.Get()
}

// RewardPerToken computes the accumulator as of lastApplicable without
// touching storage. With nothing staked no time-based growth happens and the
// stored value is returned as is.
func (s *Service) RewardPerToken(lastApplicable uint64, rate, totalStaked *big.Int) (*big.Int, error) {
	stored, err := s.rewardPerToken.Get()
	if err != nil {
		return nil, err
	}
	if totalStaked.Sign() == 0 {
		return stored, nil
	}
	last, err := s.lastUpdateTime.Get()
	if err != nil {
		return nil, err
	}
	if lastApplicable <= last {
		return stored, nil
	}

	delta := new(big.Int).SetUint64(lastApplicable - last)
	delta.Mul(delta, rate)
	delta.Mul(delta, fleek.RewardScale)
	if delta.Cmp(math.MaxBig256) > 0 {
		return nil, reverts.New(reverts.ErrOverflow, "accumulator delta exceeds uint256")
	}
	delta.Div(delta, totalStaked)

	index := delta.Add(delta, stored)
	if index.Cmp(math.MaxBig256) > 0 {
		return nil, reverts.New(reverts.ErrOverflow, "accumulator exceeds uint256")
	}
	return index, nil
}

// Checkpoint freezes the accumulator as of lastApplicable and returns the
// frozen value. Subsequent accrual starts from lastApplicable.
func (s *Service) Checkpoint(lastApplicable uint64, rate, totalStaked *big.Int) (*big.Int, error) {
	index, err := s.RewardPerToken(lastApplicable, rate, totalStaked)
	if err != nil {
		return nil, err
	}
	s.rewardPerToken.Set(index)

	last, err := s.lastUpdateTime.Get()
	if err != nil {
		return nil, err
	}
	if lastApplicable > last {
		s.lastUpdateTime.Set(lastApplicable)
	}
	return index, nil
}

// AdvanceTime moves the checkpoint clock to now without accruing. Called
// when a new funding period starts, so the gap since the last period ended
// is not charged against the new rate.
func (s *Service) AdvanceTime(now uint64) error {
	last, err := s.lastUpdateTime.Get()
	if err != nil {
		return err
	}
	if now > last {
		s.lastUpdateTime.Set(now)
	}
	return nil
}

// Earned computes the account's claimable reward against the given
// accumulator value, without touching storage.
func (s *Service) Earned(account fleek.Address, balance, index *big.Int) (*big.Int, error) {
	r, err := s.getReward(account)
	if err != nil {
		return nil, err
	}
	gain := new(big.Int).Sub(index, r.Paid)
	gain.Mul(gain, balance)
	if gain.Cmp(math.MaxBig256) > 0 {
		return nil, reverts.New(reverts.ErrOverflow, "earned amount exceeds uint256")
	}
	gain.Div(gain, fleek.RewardScale)

	earned := gain.Add(gain, r.Stored)
	if earned.Cmp(math.MaxBig256) > 0 {
		return nil, reverts.New(reverts.ErrOverflow, "earned amount exceeds uint256")
	}
	return earned, nil
}

// SettleAccount credits the account's earnings against the given accumulator
// value and marks it paid up to that point. The balance must be the one in
// effect before the operation being settled.
func (s *Service) SettleAccount(account fleek.Address, balance, index *big.Int) error {
	earned, err := s.Earned(account, balance, index)
	if err != nil {
		return err
	}
	return s.rewards.Set(account, reward{Paid: new(big.Int).Set(index), Stored: earned})
}

// ClaimReward zeroes the account's settled reward and returns the amount.
func (s *Service) ClaimReward(account fleek.Address) (*big.Int, error) {
	r, err := s.getReward(account)
	if err != nil {
		return nil, err
	}
	if r.Stored.Sign() == 0 {
		return r.Stored, nil
	}
	if err := s.rewards.Set(account, reward{Paid: r.Paid, Stored: new(big.Int)}); err != nil {
		return nil, err
	}
	return r.Stored, nil
}

func (s *Service) getReward(account fleek.Address) (*reward, error) {
	r, err := s.rewards.Get(account)
	if err != nil {
		return nil, err
	}
	if r.Paid == nil {
		r.Paid = new(big.Int)
	}
	if r.Stored == nil {
		r.Stored = new(big.Int)
	}
	return &r, nil
}
