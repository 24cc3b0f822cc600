// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package authority implements the role membership registry. Each role keeps
// its members in a linked list so the full set can be walked without range
// scans over storage.
package authority

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/fleek-platform/fleek-contracts/contracts/solidity"
	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/state"
)

// Roles recognized by the pool operations.
const (
	RoleAdmin  = "admin"
	RoleFunder = "funder"
)

type entry struct {
	Listed bool
	Prev   *fleek.Address `rlp:"nil"`
	Next   *fleek.Address `rlp:"nil"`
}

func (e *entry) isEmpty() bool {
	return !e.Listed && e.Prev == nil && e.Next == nil
}

// Authority binds the role registry at the given instance address.
type Authority struct {
	context *solidity.Context
}

func New(addr fleek.Address, st *state.State) *Authority {
	return &Authority{solidity.NewContext(addr, st)}
}

func headKey(role string) fleek.Bytes32 {
	return fleek.Blake2b([]byte("head"), []byte(role))
}

func tailKey(role string) fleek.Bytes32 {
	return fleek.Blake2b([]byte("tail"), []byte(role))
}

func entryKey(role string, member fleek.Address) fleek.Bytes32 {
	return fleek.Blake2b([]byte(role), member.Bytes())
}

func (a *Authority) getEntry(role string, member fleek.Address) (*entry, error) {
	var e entry
	if err := a.context.State().DecodeStorage(a.context.Address(), entryKey(role, member), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &e)
	}); err != nil {
		return nil, err
	}
	return &e, nil
}

func (a *Authority) setEntry(role string, member fleek.Address, e *entry) error {
	return a.context.State().EncodeStorage(a.context.Address(), entryKey(role, member), func() ([]byte, error) {
		if e.isEmpty() {
			return nil, nil
		}
		return rlp.EncodeToBytes(e)
	})
}

func (a *Authority) getAddressPtr(key fleek.Bytes32) (addr *fleek.Address, err error) {
	err = a.context.State().DecodeStorage(a.context.Address(), key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &addr)
	})
	return
}

func (a *Authority) setAddressPtr(key fleek.Bytes32, addr *fleek.Address) error {
	return a.context.State().EncodeStorage(a.context.Address(), key, func() ([]byte, error) {
		if addr == nil {
			return nil, nil
		}
		return rlp.EncodeToBytes(addr)
	})
}

// HasRole reports whether the member currently holds the role.
func (a *Authority) HasRole(role string, member fleek.Address) (bool, error) {
	e, err := a.getEntry(role, member)
	if err != nil {
		return false, err
	}
	return e.Listed, nil
}

// Grant appends the member to the role's list.
// Returns false if the member already holds the role.
func (a *Authority) Grant(role string, member fleek.Address) (bool, error) {
	e, err := a.getEntry(role, member)
	if err != nil {
		return false, err
	}
	if e.Listed {
		return false, nil
	}

	tailPtr, err := a.getAddressPtr(tailKey(role))
	if err != nil {
		return false, err
	}
	e.Listed = true
	e.Prev = tailPtr

	if err := a.setAddressPtr(tailKey(role), &member); err != nil {
		return false, err
	}
	if tailPtr == nil {
		if err := a.setAddressPtr(headKey(role), &member); err != nil {
			return false, err
		}
	} else {
		tailEntry, err := a.getEntry(role, *tailPtr)
		if err != nil {
			return false, err
		}
		tailEntry.Next = &member
		if err := a.setEntry(role, *tailPtr, tailEntry); err != nil {
			return false, err
		}
	}

	if err := a.setEntry(role, member, e); err != nil {
		return false, err
	}
	return true, nil
}

// Revoke unlinks the member from the role's list and releases its entry.
// Returns false if the member does not hold the role.
func (a *Authority) Revoke(role string, member fleek.Address) (bool, error) {
	e, err := a.getEntry(role, member)
	if err != nil {
		return false, err
	}
	if !e.Listed {
		return false, nil
	}

	if e.Prev == nil {
		if err := a.setAddressPtr(headKey(role), e.Next); err != nil {
			return false, err
		}
	} else {
		prevEntry, err := a.getEntry(role, *e.Prev)
		if err != nil {
			return false, err
		}
		prevEntry.Next = e.Next
		if err := a.setEntry(role, *e.Prev, prevEntry); err != nil {
			return false, err
		}
	}

	if e.Next == nil {
		if err := a.setAddressPtr(tailKey(role), e.Prev); err != nil {
			return false, err
		}
	} else {
		nextEntry, err := a.getEntry(role, *e.Next)
		if err != nil {
			return false, err
		}
		nextEntry.Prev = e.Prev
		if err := a.setEntry(role, *e.Next, nextEntry); err != nil {
			return false, err
		}
	}

	if err := a.setEntry(role, member, &entry{}); err != nil {
		return false, err
	}
	return true, nil
}

// Members returns the role's members in grant order.
func (a *Authority) Members(role string) ([]fleek.Address, error) {
	ptr, err := a.getAddressPtr(headKey(role))
	if err != nil {
		return nil, err
	}
	var members []fleek.Address
	for ptr != nil {
		e, err := a.getEntry(role, *ptr)
		if err != nil {
			return nil, err
		}
		members = append(members, *ptr)
		ptr = e.Next
	}
	return members, nil
}
