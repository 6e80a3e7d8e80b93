package pool

import (
	"bytes"

	"strpool/hash"
)

// Handle is a compact reference to an interned string. The zero value is
// the empty-string sentinel: it derefs to "" and never touches a pool's
// refcount on Clone or Release.
//
// A non-empty Handle holds exactly one of a small-tier slot (small,
// offset) or a large-tier entry (large). Go's allocator gives no alignment
// guarantee strong enough to recover a page from an interior address by
// masking, so Handle carries its owning page or entry directly rather than
// deriving it from an address, at the cost of two extra words (a page
// pointer, an offset and an entry pointer instead of one pointer).
type Handle struct {
	small  *page
	offset uint32
	large  *largeEntry
}

// IsEmpty reports whether h is the empty-string sentinel.
func (h Handle) IsEmpty() bool {
	return h.small == nil && h.large == nil
}

// Deref returns the string h refers to; "" for the empty sentinel.
func (h Handle) Deref() string {
	switch {
	case h.large != nil:
		return string(h.large.data)
	case h.small != nil:
		length, _, _ := readSlot(&h.small.entries, int(h.offset))
		start := int(h.offset) + slotHeaderSize
		return string(h.small.entries[start : start+length])
	default:
		return ""
	}
}

// String implements fmt.Stringer by delegating to Deref.
func (h Handle) String() string {
	return h.Deref()
}

func (h Handle) owner() *poolInner {
	switch {
	case h.large != nil:
		return h.large.owner
	case h.small != nil:
		return h.small.owner
	default:
		return nil
	}
}

// Clone returns a copy of h, incrementing its owning pool's refcount if h
// is non-empty.
func (h Handle) Clone() Handle {
	if owner := h.owner(); owner != nil {
		owner.refcount.Add(1)
	}
	return h
}

// Release drops h's reference to its owning pool, if any. On the last
// outstanding reference across every Pool clone and Handle, the pool's
// backing store is reclaimed.
func (h Handle) Release() {
	if owner := h.owner(); owner != nil {
		owner.release()
	}
}

// Equal reports whether h and other refer to the same text. Concurrent
// Intern calls for the same content can legitimately leave two distinct
// slots holding equal bytes, so equality falls back to a byte comparison
// whenever the handles aren't already identical.
func (h Handle) Equal(other Handle) bool {
	if h.small == other.small && h.offset == other.offset && h.large == other.large {
		return true
	}
	return h.Deref() == other.Deref()
}

// Compare orders h and other lexically by their referenced text.
func (h Handle) Compare(other Handle) int {
	return bytes.Compare([]byte(h.Deref()), []byte(other.Deref()))
}

// Hash returns the 64-bit hash of the referenced text, equal to
// hash.HashString of Deref's result. Handles holding equal text hash
// equally, including across duplicate slots.
func (h Handle) Hash() uint64 {
	switch {
	case h.large != nil:
		return h.large.strHash
	case h.small != nil:
		length, _, _ := readSlot(&h.small.entries, int(h.offset))
		start := int(h.offset) + slotHeaderSize
		return hash.HashBytes(h.small.entries[start : start+length])
	default:
		return hash.HashBytes(nil)
	}
}
