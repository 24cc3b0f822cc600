// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"errors"
	"slices"
	"sync"

	"github.com/qianbin/directcache"
	"golang.org/x/sync/singleflight"

	"github.com/fleek-platform/fleek-contracts/cache"
	"github.com/fleek-platform/fleek-contracts/kv"
)

var errReadOnly = errors.New("read-only state")

// slotCommitter writes slot changes back to the store.
type slotCommitter interface {
	commit(changes map[storageKey][]byte) error
}

// Stater hands out state instances over one backing store, front-loaded by a
// shared read-through slot cache. Many read-only instances may live at once;
// committing is expected to be serialized by the caller (the node holds the
// execution lock while a mutating operation runs).
type Stater struct {
	store kv.GetPutter
	cache *directcache.Cache
	stats cache.Stats
	group singleflight.Group

	// guards cache/store coherence: loads fill the cache under RLock,
	// commits refresh it under Lock.
	lock sync.RWMutex
}

// NewStater creates a stater with the given cache size in MiB.
func NewStater(store kv.GetPutter, cacheMB int) *Stater {
	if cacheMB < 1 {
		cacheMB = 1
	}
	return &Stater{
		store: store,
		cache: directcache.New(cacheMB * 1024 * 1024),
	}
}

// NewState creates a state instance on top of the committed store content.
func (s *Stater) NewState() *State {
	return newState(s)
}

// CacheStats returns the slot cache hit/miss counters and whether the hit
// rate moved since the last call.
func (s *Stater) CacheStats() (bool, int64, int64) {
	return s.stats.Stats()
}

func cacheKey(k storageKey) []byte {
	buf := make([]byte, 0, len(k.addr)+len(k.key))
	buf = append(buf, k.addr[:]...)
	return append(buf, k.key[:]...)
}

func (s *Stater) read(k storageKey) ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	ck := cacheKey(k)

	var cached []byte
	if s.cache.AdvGet(ck, func(val []byte) {
		cached = slices.Clone(val)
	}, false) {
		s.stats.Hit()
		return cached, nil
	}
	s.stats.Miss()

	// de-duplicates concurrent loads of the same slot
	v, err, _ := s.group.Do(string(ck), func() (any, error) {
		val, err := s.store.Get(ck)
		if err != nil {
			if s.store.IsNotFound(err) {
				return []byte(nil), nil
			}
			return nil, err
		}
		_ = s.cache.Set(ck, val)
		return val, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *Stater) commit(changes map[storageKey][]byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	batch := s.store.NewBatch()
	for k, raw := range changes {
		ck := cacheKey(k)
		if len(raw) == 0 {
			if err := batch.Delete(ck); err != nil {
				return &Error{err}
			}
		} else {
			if err := batch.Put(ck, raw); err != nil {
				return &Error{err}
			}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}

	// refresh the cache with what was just written; an empty value reads
	// back as an unset slot, which matches the store state after Delete
	for k, raw := range changes {
		_ = s.cache.Set(cacheKey(k), raw)
	}
	return nil
}
