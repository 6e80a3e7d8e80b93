package pool

import (
	"bytes"
	"sync/atomic"
	"unsafe"

	"strpool/logger"
	"strpool/poolconfig"
)

const (
	// slotHeaderSize is the width of a slot's length/ready header: bit 7
	// is NOT_READY, bits 0-6 are length, read and CAS'd atomically as one
	// unit. Go's sync/atomic has no 8-bit atomic type, so the header is
	// widened to a uint32 (the narrowest type sync/atomic supports)
	// carrying the same two fields; every slot's payload is then padded
	// so the next header lands on a 4-byte boundary, which unsafe pointer
	// reinterpretation of a []byte as *atomic.Uint32 requires on every
	// architecture Go targets.
	slotHeaderSize = 4

	notReady = 0x80
	lenMask  = 0x7f

	pageHeaderSize = int(unsafe.Sizeof(pageHeader{}))
	pageCapacity   = poolconfig.PageSize - pageHeaderSize
)

type pageHeader struct {
	next  atomic.Pointer[page]
	owner *poolInner
}

// page is a fixed-size, append-only block of small-tier slots. Pages are
// linked into a singly-linked list per shard and are never moved or freed
// individually -- the whole pool's reclamation releases them together by
// unlinking the shard's list head.
type page struct {
	pageHeader
	entries [pageCapacity]byte
}

func newPage(owner *poolInner) *page {
	p := &page{}
	p.owner = owner
	return p
}

func align4(n int) int {
	return (n + 3) &^ 3
}

func headerAt(entries *[pageCapacity]byte, offset int) *atomic.Uint32 {
	return (*atomic.Uint32)(unsafe.Pointer(&entries[offset]))
}

func readSlot(entries *[pageCapacity]byte, offset int) (length int, ready bool, raw uint32) {
	raw = headerAt(entries, offset).Load()
	ready = raw&notReady == 0
	length = int(raw & lenMask)
	return
}

// find searches this page only; it never crosses into the next page and
// never mutates anything.
func (p *page) find(b []byte) (offset int, ok bool) {
	i := 0
	for i < pageCapacity {
		length, ready, _ := readSlot(&p.entries, i)
		if ready {
			if length == len(b) {
				start := i + slotHeaderSize
				if bytes.Equal(p.entries[start:start+length], b) {
					return i, true
				}
			} else if length == 0 {
				return 0, false // unused terminator: page exhausted
			}
		}
		i += align4(slotHeaderSize + length)
	}
	return 0, false
}

// tryIntern searches this page for b, reusing a matching slot if one
// exists, or reserving and filling a fresh slot if there is room. It
// returns ok=false either when the page is full of non-matching entries
// or when there isn't room for b before pageCapacity -- both cases mean
// the caller should move on to (or allocate) the next page.
func (p *page) tryIntern(b []byte) (offset int, ok bool) {
	i := 0
	for i < pageCapacity {
		hdr := headerAt(&p.entries, i)
		raw := hdr.Load()
		ready := raw&notReady == 0
		length := int(raw & lenMask)
		start := i + slotHeaderSize

		if ready && length == len(b) {
			if bytes.Equal(p.entries[start:start+length], b) {
				return i, true
			}
		} else if ready && length == 0 {
			if start+len(b) <= pageCapacity {
				reserved := uint32(notReady) | uint32(len(b))
				if hdr.CompareAndSwap(0, reserved) {
					copy(p.entries[start:start+len(b)], b)
					if !hdr.CompareAndSwap(reserved, uint32(len(b))) {
						panic("strpool: slot was exclusively reserved but ready transition failed")
					}
					return i, true
				}
				continue // lost the reservation race; reread this offset
			}
			return 0, false // no room left in this page
		}

		i += align4(slotHeaderSize + length)
	}
	return 0, false
}

// findSmall walks shard shardIdx's page list looking for b. It never
// allocates and never mutates a page.
func (inner *poolInner) findSmall(shardIdx int, b []byte) (*page, int, bool) {
	sh := &inner.shards[shardIdx]
	for p := sh.firstPage.Load(); p != nil; p = p.next.Load() {
		if offset, ok := p.find(b); ok {
			return p, offset, true
		}
	}
	return nil, 0, false
}

// internSmall walks shard shardIdx's page list, reusing or reserving a
// slot for b. If every existing page is full, it appends a freshly
// allocated page via CAS and resumes the search from the first page that
// hadn't been explored yet -- never from the shard head -- so a losing
// thread's preallocated page is chained on rather than wasted.
func (inner *poolInner) internSmall(shardIdx int, b []byte) (*page, int) {
	sh := &inner.shards[shardIdx]
	slot := &sh.firstPage

	for {
		for p := slot.Load(); p != nil; p = p.next.Load() {
			if offset, ok := p.tryIntern(b); ok {
				return p, offset
			}
			slot = &p.next
		}

		tail := slot
		fresh := newPage(inner)

		for !tail.CompareAndSwap(nil, fresh) {
			// another goroutine appended a page first; chase its next
			// pointer so our preallocated page ends up linked further
			// down instead of discarded
			other := tail.Load()
			tail = &other.next
		}
		logger.Trace(logger.SubsystemSmallTier, "appended page to shard %d", shardIdx)

		// slot still marks the first page this walk hadn't explored;
		// resuming there covers pages other goroutines appended (which
		// may already hold b) before reaching our fresh page.
	}
}

