package pool

import "sync/atomic"

// shard holds one independent pair of tier lists. A Pool with shard count
// P replicates this P-fold and picks a shard per string via hash&(P-1),
// trading a little memory for reduced head-pointer contention. P=1
// collapses to a single shard and is the default.
type shard struct {
	firstPage  atomic.Pointer[page]
	firstLarge atomic.Pointer[largeEntry]
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// shardIndex picks the shard a hash belongs to. Valid for any power-of-two
// shard count, including 1 (always shard 0).
func shardIndex(h uint64, shardCount int) int {
	return int(h & uint64(shardCount-1))
}
