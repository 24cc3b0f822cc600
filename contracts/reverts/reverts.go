// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the typed failures of native contract operations.
// A revert aborts the whole operation with no state change; its kind is
// assertable with errors.Is, never a generic fault.
package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies a revert. Kinds are compared by identity.
type Kind struct {
	name string
}

func (k *Kind) Error() string {
	return k.name
}

// The revert kinds.
var (
	ErrInvalidAmount         = &Kind{"invalid amount"}
	ErrStillLocked           = &Kind{"still locked"}
	ErrCooldownNotElapsed    = &Kind{"cooldown not elapsed"}
	ErrRateTooHigh           = &Kind{"reward rate too high"}
	ErrDurationLocked        = &Kind{"rewards duration locked"}
	ErrUnauthorized          = &Kind{"unauthorized"}
	ErrSuspended             = &Kind{"suspended"}
	ErrInsufficientFunds     = &Kind{"insufficient funds"}
	ErrInsufficientAllowance = &Kind{"insufficient allowance"}
	ErrForbiddenAsset        = &Kind{"forbidden asset"}
	ErrUnsupported           = &Kind{"unsupported operation"}
	ErrBusy                  = &Kind{"operation in progress"}
	ErrOverflow              = &Kind{"arithmetic overflow"}
)

// ErrRevert is a typed revert carrying a kind and a detail message.
type ErrRevert struct {
	kind    *Kind
	message string
}

// New creates a revert of the given kind.
func New(kind *Kind, format string, args ...any) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: fmt.Sprintf(format, args...),
	}
}

func (e *ErrRevert) Error() string {
	if e.message == "" {
		return e.kind.name
	}
	return e.kind.name + ": " + e.message
}

// Kind returns the revert kind.
func (e *ErrRevert) Kind() *Kind {
	return e.kind
}

// Is lets errors.Is match a revert against its kind sentinel.
func (e *ErrRevert) Is(target error) bool {
	return target == e.kind
}

// IsRevert reports whether err is (or wraps) a typed revert.
func IsRevert(err error) bool {
	if err == nil {
		return false
	}
	var re *ErrRevert
	return errors.As(err, &re)
}
