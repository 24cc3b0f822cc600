// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleek-platform/fleek-contracts/stackedmap"
)

func M(a ...any) []any {
	return a
}

func TestStackedMap(t *testing.T) {
	assert := assert.New(t)
	src := make(map[string]string)
	src["foo"] = "bar"

	sm := stackedmap.New(func(key any) (any, bool, error) {
		v, r := src[key.(string)]
		return v, r, nil
	})

	tests := []struct {
		f         func()
		depth     int
		putKey    string
		putValue  string
		getKey    string
		getReturn []any
	}{
		{func() { sm.Push() }, 1, "", "", "foo", []any{"bar", true, nil}},
		{func() { sm.Push() }, 2, "foo", "baz", "foo", []any{"baz", true, nil}},
		{func() {}, 2, "foo", "baz1", "foo", []any{"baz1", true, nil}},
		{func() { sm.Push() }, 3, "foo", "qux", "foo", []any{"qux", true, nil}},
		{func() { sm.Pop() }, 2, "", "", "foo", []any{"baz1", true, nil}},
		{func() { sm.Pop() }, 1, "", "", "foo", []any{"bar", true, nil}},

		{func() { sm.Push(); sm.Push() }, 3, "", "", "", nil},
		{func() { sm.PopTo(0) }, 0, "", "", "", nil},
	}

	for _, tt := range tests {
		tt.f()
		assert.Equal(tt.depth, sm.Depth())
		if tt.putKey != "" {
			sm.Put(tt.putKey, tt.putValue)
		}
		if tt.getKey != "" {
			assert.Equal(tt.getReturn, M(sm.Get(tt.getKey)))
		}
	}
}

func TestStackedMapRepeatedPut(t *testing.T) {
	assert := assert.New(t)
	sm := stackedmap.New(func(_ any) (any, bool, error) {
		return nil, false, nil
	})

	sm.Push()
	sm.Put("k", "v1")
	sm.Put("k", "v2")

	v, ok, err := sm.Get("k")
	assert.Equal(M("v2", true, error(nil)), M(v, ok, err))

	sm.Pop()
	_, ok, err = sm.Get("k")
	assert.False(ok)
	assert.NoError(err)
	assert.Equal(0, sm.Depth())
}

func TestJournal(t *testing.T) {
	assert := assert.New(t)
	sm := stackedmap.New(func(_ any) (any, bool, error) {
		return nil, false, nil
	})

	kvs := []struct{ k, v string }{
		{"a", "b"},
		{"a", "b"},
		{"a1", "b1"},
		{"a2", "b2"},
		{"a3", "b3"},
		{"a4", "b4"},
	}

	for _, kv := range kvs {
		sm.Push()
		sm.Put(kv.k, kv.v)
	}

	var i int
	sm.Journal(func(k, v any) bool {
		assert.Equal(kvs[i].k, k)
		assert.Equal(kvs[i].v, v)
		i++
		return true
	})
	assert.Equal(len(kvs), i)

	// early termination
	i = 0
	sm.Journal(func(_, _ any) bool {
		i++
		return i < 3
	})
	assert.Equal(3, i)

	// puts reverted by Pop leave the journal
	sm.PopTo(1)
	i = 0
	sm.Journal(func(_, _ any) bool {
		i++
		return true
	})
	assert.Equal(1, i)
}
