// Package poolserde adapts strpool's Handle to encoding/json, so that
// struct fields backed by interned strings are interned into the pool as
// they are decoded. Each value is first decoded into an ordinary Go string,
// which is then interned.
package poolserde

import (
	"bytes"
	"sync"

	"strpool/pool"
	"strpool/poolcell"
)

var (
	cellMu sync.RWMutex
	cell   = poolcell.New()
)

// SetCell replaces the package-level Cell that Interned values intern
// into. Intended for tests and for processes that want every Interned
// field sharing one pool distinct from the package default.
func SetCell(c *poolcell.Cell) {
	cellMu.Lock()
	defer cellMu.Unlock()
	cell = c
}

func currentCell() *poolcell.Cell {
	cellMu.RLock()
	defer cellMu.RUnlock()
	return cell
}

// Interned is a JSON string field backed by a pool Handle. The zero value
// decodes and derefs like an ordinary empty string.
type Interned struct {
	handle pool.Handle
}

// String returns the underlying text.
func (n Interned) String() string {
	return n.handle.Deref()
}

// Handle returns the Handle backing n. The caller must not Release it
// directly; use Release on the Interned value itself.
func (n Interned) Handle() pool.Handle {
	return n.handle
}

// Release drops n's reference to its backing pool, if any.
func (n Interned) Release() {
	n.handle.Release()
}

// Clone returns a copy of n with its own reference to the backing pool.
func (n Interned) Clone() Interned {
	return Interned{handle: n.handle.Clone()}
}

// NewInterned interns s into the package-level Cell's pool and wraps the
// result.
func NewInterned(s string) Interned {
	p := currentCell().Pool()
	defer p.Release()
	return Interned{handle: p.Intern(s)}
}

// MarshalJSON implements json.Marshaler, writing n's text as a JSON string
// through a pooled buffer and encoder. The text is copied out of the pool
// by Deref and the encoded result is copied into a fresh slice.
func (n Interned) MarshalJSON() ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	enc := getEncoder(buf)
	defer putEncoder(enc)

	if err := enc.Encode(n.handle.Deref()); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len()-1) // trim the trailing newline json.Encoder adds
	copy(out, buf.Bytes())
	return out, nil
}

// UnmarshalJSON implements json.Unmarshaler, interning the decoded string
// into the package-level Cell's pool.
func (n *Interned) UnmarshalJSON(data []byte) error {
	dec := getDecoder(bytes.NewReader(data))
	defer putDecoder(dec)

	var s string
	if err := dec.Decode(&s); err != nil {
		return err
	}

	p := currentCell().Pool()
	defer p.Release()

	old := n.handle
	n.handle = p.Intern(s)
	old.Release()
	return nil
}
