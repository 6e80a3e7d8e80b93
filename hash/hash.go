// Package hash provides the single 64-bit hash function used by strpool's
// large tier and by its optional sharding. It is deterministic within a
// process and keyed by hash/seed.dat, which is embedded at build time. The
// build does not regenerate that file: output changes only when
// cmd/genseed writes a new seed, so builds from the same seed.dat hash
// identically.
//
// Collision rate is the only performance consideration here; this hash
// makes no promises about resistance to adversarial inputs.
package hash

import (
	"encoding/binary"
	_ "embed"

	"golang.org/x/crypto/blake2b"
)

//go:embed seed.dat
var seed []byte

func init() {
	if len(seed) != 32 {
		panic("hash: seed.dat must be exactly 32 bytes; regenerate with cmd/genseed")
	}
}

// HashBytes returns a stable 64-bit hash of b, seeded by the build-time key
// in seed.dat. Equal inputs within the same binary always hash equally;
// the same input hashes differently only across builds that embed
// different seed.dat contents.
func HashBytes(b []byte) uint64 {
	// BLAKE2b's keyed mode is a MAC by design, which is exactly the
	// "seeded, stable-per-build" property we need -- a plain unkeyed
	// hash would require XOR-folding the seed in by hand.
	h, err := blake2b.New256(seed)
	if err != nil {
		// Only fails for an oversized key; seed.dat is fixed at 32 bytes.
		panic(err)
	}
	h.Write(b)
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8])
}

// HashString is a convenience wrapper over HashBytes for string inputs.
func HashString(s string) uint64 {
	return HashBytes([]byte(s))
}
