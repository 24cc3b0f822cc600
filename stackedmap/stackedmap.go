// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stackedmap implements a map with save-restore manner.
// Values put after a checkpoint can be reverted in one call, which is the
// primitive the state layer builds operation atomicity on.
package stackedmap

// MapGetter defines the getter method of the source map.
type MapGetter func(key any) (value any, exist bool, err error)

// StackedMap maintains maps in a stack.
// Each map inherits the key/values of the map at the lower level.
type StackedMap struct {
	src       MapGetter
	levels    []*level
	revisions map[any][]int // key -> stack of level indices that contain the key
}

type level struct {
	kvs     map[any]any
	journal []journalEntry
}

type journalEntry struct {
	key   any
	value any
}

// New creates an instance of StackedMap. src acts as the source of data.
func New(src MapGetter) *StackedMap {
	return &StackedMap{
		src:       src,
		revisions: make(map[any][]int),
	}
}

// Depth returns the depth of the stack.
func (sm *StackedMap) Depth() int {
	return len(sm.levels)
}

// Push pushes a new map on the stack and returns the stack depth before push.
func (sm *StackedMap) Push() int {
	sm.levels = append(sm.levels, &level{kvs: make(map[any]any)})
	return len(sm.levels) - 1
}

// Pop pops the map at the top of the stack.
// It reverts all Put operations since the last Push.
func (sm *StackedMap) Pop() {
	top := sm.levels[len(sm.levels)-1]
	for key := range top.kvs {
		revs := sm.revisions[key]
		if len(revs) <= 1 {
			delete(sm.revisions, key)
		} else {
			sm.revisions[key] = revs[:len(revs)-1]
		}
	}
	sm.levels = sm.levels[:len(sm.levels)-1]
}

// PopTo pops maps until the stack depth reaches depth.
func (sm *StackedMap) PopTo(depth int) {
	for len(sm.levels) > depth {
		sm.Pop()
	}
}

// Get gets the value for the given key.
// The second return value indicates whether the key was found.
func (sm *StackedMap) Get(key any) (any, bool, error) {
	if revs, ok := sm.revisions[key]; ok {
		lvl := sm.levels[revs[len(revs)-1]]
		if v, ok := lvl.kvs[key]; ok {
			return v, true, nil
		}
	}
	return sm.src(key)
}

// Put puts a key/value into the map at the stack top.
// It panics if the stack is empty.
func (sm *StackedMap) Put(key, value any) {
	top := sm.levels[len(sm.levels)-1]
	top.kvs[key] = value
	top.journal = append(top.journal, journalEntry{key: key, value: value})

	// records key revision for fast access
	rev := len(sm.levels) - 1
	if revs, ok := sm.revisions[key]; ok {
		if revs[len(revs)-1] != rev {
			sm.revisions[key] = append(revs, rev)
		}
	} else {
		sm.revisions[key] = []int{rev}
	}
}

// Journal traverses all Put operations in order, bottom level first.
// Traversal stops when cb returns false.
func (sm *StackedMap) Journal(cb func(key, value any) bool) {
	for _, lvl := range sm.levels {
		for _, e := range lvl.journal {
			if !cb(e.key, e.value) {
				return
			}
		}
	}
}
