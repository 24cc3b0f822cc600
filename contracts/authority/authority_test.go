// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package authority

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleek-platform/fleek-contracts/fleek"
	"github.com/fleek-platform/fleek-contracts/lvldb"
	"github.com/fleek-platform/fleek-contracts/state"
)

func M(a ...any) []any {
	return a
}

func newTestAuthority(t *testing.T) *Authority {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.NewStater(db, 1).NewState()
	return New(fleek.InstanceAddress("authority", "test"), st)
}

func TestAuthority(t *testing.T) {
	aut := newTestAuthority(t)

	m1 := fleek.BytesToAddress([]byte("m1"))
	m2 := fleek.BytesToAddress([]byte("m2"))
	m3 := fleek.BytesToAddress([]byte("m3"))

	tests := []struct {
		ret      any
		expected any
	}{
		{M(aut.Grant(RoleFunder, m1)), M(true, nil)},
		{M(aut.Grant(RoleFunder, m2)), M(true, nil)},
		{M(aut.Grant(RoleFunder, m3)), M(true, nil)},
		{M(aut.Grant(RoleFunder, m2)), M(false, nil)},
		{M(aut.HasRole(RoleFunder, m1)), M(true, nil)},
		{M(aut.HasRole(RoleAdmin, m1)), M(false, nil)},
		{M(aut.Members(RoleFunder)), M([]fleek.Address{m1, m2, m3}, nil)},
		{M(aut.Revoke(RoleFunder, m2)), M(true, nil)},
		{M(aut.Revoke(RoleFunder, m2)), M(false, nil)},
		{M(aut.HasRole(RoleFunder, m2)), M(false, nil)},
		{M(aut.Members(RoleFunder)), M([]fleek.Address{m1, m3}, nil)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.ret)
	}
}

func TestAuthorityUnlinkEnds(t *testing.T) {
	aut := newTestAuthority(t)

	m1 := fleek.BytesToAddress([]byte("m1"))
	m2 := fleek.BytesToAddress([]byte("m2"))
	m3 := fleek.BytesToAddress([]byte("m3"))

	for _, m := range []fleek.Address{m1, m2, m3} {
		ok, err := aut.Grant(RoleAdmin, m)
		require.NoError(t, err)
		require.True(t, ok)
	}

	// removing the head relinks the list
	ok, err := aut.Revoke(RoleAdmin, m1)
	require.NoError(t, err)
	require.True(t, ok)

	members, err := aut.Members(RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, []fleek.Address{m2, m3}, members)

	// removing the tail keeps the rest
	ok, err = aut.Revoke(RoleAdmin, m3)
	require.NoError(t, err)
	require.True(t, ok)

	members, err = aut.Members(RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, []fleek.Address{m2}, members)

	// a revoked member can be granted again, appended at the tail
	ok, err = aut.Grant(RoleAdmin, m1)
	require.NoError(t, err)
	require.True(t, ok)

	members, err = aut.Members(RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, []fleek.Address{m2, m1}, members)
}

func TestAuthorityRolesIsolated(t *testing.T) {
	aut := newTestAuthority(t)

	m1 := fleek.BytesToAddress([]byte("m1"))

	ok, err := aut.Grant(RoleAdmin, m1)
	require.NoError(t, err)
	require.True(t, ok)

	has, err := aut.HasRole(RoleFunder, m1)
	require.NoError(t, err)
	assert.False(t, has)

	members, err := aut.Members(RoleFunder)
	require.NoError(t, err)
	assert.Empty(t, members)
}
