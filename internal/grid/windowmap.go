package grid

import (
	"hash/maphash"
	"sync"
)

// shardCount is the number of independent lock domains the window map is
// split across. A bursty event source (OS callbacks funneled through the
// dispatcher) inserts/updates one handle at a time; sharding by handle lets
// unrelated handles proceed without contending the same mutex a concurrent
// snapshot or periodic scan is holding.
const shardCount = 32

type shard struct {
	mu      sync.RWMutex
	entries map[Handle]*WindowInfo
}

// WindowMap is a concurrent map keyed by window Handle. It is the single
// source of truth the WindowTracker wraps: reads (snapshot, iteration) and
// writes (add/update/remove, driven from the dispatcher) can proceed on
// different handles without a global lock, per spec §4.2's concurrency
// requirement.
//
// There is no off-the-shelf concurrent map in the retrieval pack sized for
// POD value types like WindowInfo, so this shards sync.RWMutex-guarded maps
// by hash(handle) — the same per-entry-mutex discipline the teacher uses
// for its config and workspace maps, generalized to avoid one global lock.
type WindowMap struct {
	seed   maphash.Seed
	shards [shardCount]shard
}

// NewWindowMap constructs an empty WindowMap.
func NewWindowMap() *WindowMap {
	wm := &WindowMap{seed: maphash.MakeSeed()}
	for i := range wm.shards {
		wm.shards[i].entries = make(map[Handle]*WindowInfo)
	}
	return wm
}

func (wm *WindowMap) shardFor(h Handle) *shard {
	var hh maphash.Hash
	hh.SetSeed(wm.seed)
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(h >> (8 * i))
	}
	hh.Write(buf[:])
	return &wm.shards[hh.Sum64()%shardCount]
}

// Get returns a copy of the record for handle, and whether it exists.
func (wm *WindowMap) Get(h Handle) (WindowInfo, bool) {
	s := wm.shardFor(h)
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.entries[h]
	if !ok {
		return WindowInfo{}, false
	}
	return *w, true
}

// Store inserts or replaces the record for handle.
func (wm *WindowMap) Store(h Handle, w WindowInfo) {
	s := wm.shardFor(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := w
	s.entries[h] = &cp
}

// Mutate applies fn to the record for handle under that shard's write
// lock, returning false if the handle is absent. fn must not block.
func (wm *WindowMap) Mutate(h Handle, fn func(*WindowInfo)) bool {
	s := wm.shardFor(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.entries[h]
	if !ok {
		return false
	}
	fn(w)
	return true
}

// Delete removes the record for handle, reporting whether it was present.
func (wm *WindowMap) Delete(h Handle) bool {
	s := wm.shardFor(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[h]
	delete(s.entries, h)
	return ok
}

// Len returns the number of tracked windows.
func (wm *WindowMap) Len() int {
	n := 0
	for i := range wm.shards {
		wm.shards[i].mu.RLock()
		n += len(wm.shards[i].entries)
		wm.shards[i].mu.RUnlock()
	}
	return n
}

// ForEach iterates every tracked window, taking each shard's read lock in
// turn rather than one global lock for the whole map — so a long-running
// callback on one shard never blocks bursty writers on another. fn must not
// itself call back into the WindowMap.
func (wm *WindowMap) ForEach(fn func(WindowInfo)) {
	for i := range wm.shards {
		s := &wm.shards[i]
		s.mu.RLock()
		snap := make([]WindowInfo, 0, len(s.entries))
		for _, w := range s.entries {
			snap = append(snap, *w)
		}
		s.mu.RUnlock()
		for _, w := range snap {
			fn(w)
		}
	}
}

// Snapshot returns a consistent copy of every tracked window, keyed by
// handle. Safe to retain and transmit over IPC.
func (wm *WindowMap) Snapshot() map[Handle]WindowInfo {
	out := make(map[Handle]WindowInfo, wm.Len())
	wm.ForEach(func(w WindowInfo) {
		out[w.Handle] = w
	})
	return out
}
