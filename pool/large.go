package pool

import (
	"bytes"
	"sync/atomic"

	"strpool/hash"
	"strpool/logger"
)

// largeEntry is an individually allocated block for strings of length >=
// poolconfig.LargeMinLen, indexed by hash rather than packed into a page.
type largeEntry struct {
	length  int
	strHash uint64
	owner   *poolInner
	next    atomic.Pointer[largeEntry]
	data    []byte
}

func newLargeEntry(owner *poolInner, b []byte, h uint64) *largeEntry {
	data := make([]byte, len(b))
	copy(data, b)
	return &largeEntry{
		length:  len(b),
		strHash: h,
		owner:   owner,
		data:    data,
	}
}

// matches reports whether this entry holds exactly b, not just a hash
// match -- a bare hash comparison would alias two distinct strings on
// collision, so length and bytes are checked too. See DESIGN.md OQ-4.
func (e *largeEntry) matches(h uint64, b []byte) bool {
	return e.strHash == h && e.length == len(b) && bytes.Equal(e.data, b)
}

func (inner *poolInner) findLarge(shardIdx int, b []byte) (*largeEntry, bool) {
	h := hash.HashBytes(b)
	sh := &inner.shards[shardIdx]

	for e := sh.firstLarge.Load(); e != nil; e = e.next.Load() {
		if e.matches(h, b) {
			return e, true
		}
	}
	return nil, false
}

func (inner *poolInner) internLarge(shardIdx int, b []byte) *largeEntry {
	h := hash.HashBytes(b)
	sh := &inner.shards[shardIdx]

	slot := &sh.firstLarge
	var preallocated *largeEntry

	for {
		for e := slot.Load(); e != nil; e = e.next.Load() {
			if e.matches(h, b) {
				return e
			}
			slot = &e.next
		}

		if preallocated == nil {
			preallocated = newLargeEntry(inner, b, h)
		}

		if slot.CompareAndSwap(nil, preallocated) {
			logger.Trace(logger.SubsystemLargeTier, "appended %d-byte entry to shard %d", len(b), shardIdx)
			return preallocated
		}
		// another goroutine linked an entry first; resume the hash walk
		// from it via the updated slot, chasing until we either find a
		// duplicate (in which case the preallocated entry is simply
		// dropped -- the GC reclaims it) or get to append ours.
	}
}
