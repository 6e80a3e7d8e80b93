// Package poolconfig centralizes strpool's compile-time constants and the
// handful of knobs that are worth exposing as runtime configuration,
// following the same env-var-overridable-default pattern as
// osakka-entitydb's config package.
package poolconfig

import (
	"fmt"
	"os"
	"strconv"
)

const (
	// PageSize is the size, in bytes, of every small-tier page.
	PageSize = 1024

	// SmallMinLen and SmallMaxLen bound the small tier's input length range.
	SmallMinLen = 1
	SmallMaxLen = 126

	// LargeMinLen is the smallest input length routed to the large tier.
	LargeMinLen = 127

	// DefaultShardCount is used by New() when no WithShards option is given.
	DefaultShardCount = 1
)

// Config holds the runtime-tunable knobs for a Pool.
//
// Everything here has a sensible default; overriding via environment
// variables is meant for benchmarking and load testing, not day-to-day use.
type Config struct {
	// Shards is the number of independent tier-list shards per pool.
	// Must be a power of two. Environment: STRPOOL_SHARDS. Default: 1.
	Shards int
}

// DefaultConfig returns the zero-tuning configuration: one shard.
func DefaultConfig() Config {
	return Config{Shards: DefaultShardCount}
}

// FromEnv returns DefaultConfig with STRPOOL_SHARDS applied if set.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("STRPOOL_SHARDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("poolconfig: invalid STRPOOL_SHARDS %q: %w", v, err)
		}
		cfg.Shards = n
	}

	return cfg, nil
}

// Validate checks that the configuration can be used to construct a Pool.
func (c Config) Validate() error {
	if c.Shards <= 0 || c.Shards&(c.Shards-1) != 0 {
		return fmt.Errorf("poolconfig: shard count %d is not a power of two", c.Shards)
	}
	return nil
}
