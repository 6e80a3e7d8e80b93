// Package pool implements strpool's lock-free interning engine: a pool
// that hands out compact Handles into one of two storage tiers (small,
// bump-allocated pages; large, hash-indexed individually-allocated
// entries), safe to use from any number of goroutines without external
// locking.
package pool

import (
	"os"
	"sync/atomic"
	"unsafe"

	"strpool/hash"
	"strpool/logger"
	"strpool/poolconfig"
)

func init() {
	logger.Configure()
}

// poolInner is the shared, reference-counted object every Pool clone and
// every outstanding Handle points into. It is never copied.
type poolInner struct {
	refcount atomic.Int64
	shards   []shard
}

// Pool is a cheaply cloneable handle to an interning pool. The underlying
// storage is released once the last Pool clone and the last Handle
// derived from it have called Release.
type Pool struct {
	inner *poolInner
}

// Option configures a Pool at construction time.
type Option func(*poolconfig.Config)

// WithShards sets the pool's shard count. It must be a power of two;
// New panics otherwise. Sharding is a throughput optimization only --
// correctness is identical to the default of 1 shard.
func WithShards(n int) Option {
	return func(c *poolconfig.Config) { c.Shards = n }
}

// WithEnv overrides the pool's configuration with any STRPOOL_* variables
// set in the environment, following poolconfig.FromEnv. It panics if a set
// variable fails to parse, since a malformed override is almost certainly
// a deployment mistake worth failing loudly on.
func WithEnv() Option {
	return func(c *poolconfig.Config) {
		envCfg, err := poolconfig.FromEnv()
		if err != nil {
			panic(err)
		}
		if os.Getenv("STRPOOL_SHARDS") != "" {
			c.Shards = envCfg.Shards
		}
	}
}

// New creates a pool with a fresh, empty backing store.
func New(opts ...Option) *Pool {
	cfg := poolconfig.DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	inner := &poolInner{shards: make([]shard, cfg.Shards)}
	inner.refcount.Store(1)
	return &Pool{inner: inner}
}

// Clone returns a new Pool referencing the same backing store, incrementing
// its refcount. The clone must be released independently of the original.
func (p *Pool) Clone() *Pool {
	p.inner.refcount.Add(1)
	return &Pool{inner: p.inner}
}

// Release drops this Pool's reference. When the last reference -- Pool
// clone or Handle -- is released, the backing store is reclaimed: every
// shard's tier lists are unlinked so the garbage collector can free their
// pages and large entries. strpool has no destructors, so every caller
// that clones or interns is responsible for calling Release exactly once.
func (p *Pool) Release() {
	p.inner.release()
}

// Find locates an existing interned copy of s without inserting; it never
// adds storage to the pool. A small-tier lookup in a single-shard pool
// makes no heap allocation; lookups that hash s (large-tier strings, or
// any string in a pool with more than one shard) allocate inside
// hash.HashBytes.
func (p *Pool) Find(s string) (Handle, bool) {
	return p.inner.find(s)
}

// Intern returns a Handle to the canonical interned copy of s, inserting
// it if no copy exists yet. Concurrent Intern calls for the same string
// may race and both insert a copy -- a benign duplicate -- but Handle
// equality falls back to content comparison, so callers never observe
// the difference.
func (p *Pool) Intern(s string) Handle {
	return p.inner.intern(s)
}

func (inner *poolInner) release() {
	switch n := inner.refcount.Add(-1); {
	case n == 0:
		inner.reclaim()
	case n < 0:
		panic("strpool: refcount underflow -- a Pool or Handle was released more than once")
	}
}

// reclaim unlinks every shard's tier lists from the pool. Pages and large
// entries still reachable through a live Handle stay reachable through
// that Handle and so survive; everything else becomes eligible for the
// garbage collector. This is a root-level unlink rather than a
// node-by-node deallocate, since Go has no explicit dealloc to call in
// the first place. See DESIGN.md OQ-1.
func (inner *poolInner) reclaim() {
	for i := range inner.shards {
		sh := &inner.shards[i]
		sh.firstPage.Store(nil)
		sh.firstLarge.Store(nil)
	}
	logger.Trace(logger.SubsystemReclaim, "pool reclaimed: %d shard(s) unlinked", len(inner.shards))
}

// shardFor selects the shard b belongs to. With a single shard (the
// default) this is always shard 0 and costs no hash computation.
func (inner *poolInner) shardFor(b []byte) int {
	if len(inner.shards) == 1 {
		return 0
	}
	return shardIndex(hash.HashBytes(b), len(inner.shards))
}

// stringBytes views s's backing bytes without copying. Callers must treat
// the slice as read-only and must not retain it past the call -- the tiers
// copy what they keep (into a page or a large entry's data). Avoiding the
// copy is what lets Find run allocation-free. s must be non-empty.
func stringBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (inner *poolInner) find(s string) (Handle, bool) {
	switch n := len(s); {
	case n == 0:
		return Handle{}, true
	case n <= poolconfig.SmallMaxLen:
		b := stringBytes(s)
		shardIdx := inner.shardFor(b)
		p, offset, ok := inner.findSmall(shardIdx, b)
		if !ok {
			return Handle{}, false
		}
		inner.refcount.Add(1)
		return Handle{small: p, offset: uint32(offset)}, true
	default:
		b := stringBytes(s)
		shardIdx := inner.shardFor(b)
		e, ok := inner.findLarge(shardIdx, b)
		if !ok {
			return Handle{}, false
		}
		inner.refcount.Add(1)
		return Handle{large: e}, true
	}
}

func (inner *poolInner) intern(s string) Handle {
	switch n := len(s); {
	case n == 0:
		return Handle{}
	case n <= poolconfig.SmallMaxLen:
		b := stringBytes(s)
		shardIdx := inner.shardFor(b)
		p, offset := inner.internSmall(shardIdx, b)
		inner.refcount.Add(1)
		return Handle{small: p, offset: uint32(offset)}
	default:
		b := stringBytes(s)
		shardIdx := inner.shardFor(b)
		e := inner.internLarge(shardIdx, b)
		inner.refcount.Add(1)
		return Handle{large: e}
	}
}
