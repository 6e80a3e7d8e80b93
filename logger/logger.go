// Package logger is the tracing facility strpool reports through. An
// interning pool has nothing to say in steady state -- the only events
// worth logging are rare structural ones (a page append, a large-entry
// append, a pool reclamation) -- so the whole surface is a set of
// named trace subsystems, all off by default, with a single atomic load
// on the disabled path so hot-path call sites cost nothing in production.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Subsystem names used across strpool. Callers pass these to Trace and
// Enable; the special name "all" enables every subsystem at once.
const (
	SubsystemSmallTier = "smalltier"
	SubsystemLargeTier = "largetier"
	SubsystemReclaim   = "reclaim"
)

var (
	// enabledCount mirrors len(enabled)'s map so the disabled path is one
	// atomic load with no interface assertion.
	enabledCount atomic.Int32

	// enabled holds a map[string]bool replaced wholesale on every
	// Enable/Disable (copy-on-write), so Trace reads it without a lock.
	enabled atomic.Value

	mu  sync.Mutex
	out = log.New(os.Stderr, "strpool ", log.Ldate|log.Ltime|log.Lmicroseconds)
)

func init() {
	enabled.Store(map[string]bool{})
}

// Trace logs a formatted message tagged with its subsystem, if that
// subsystem (or "all") has been enabled. With nothing enabled it returns
// after a single atomic load.
func Trace(subsystem, format string, args ...interface{}) {
	if enabledCount.Load() == 0 {
		return
	}
	set := enabled.Load().(map[string]bool)
	if !set[subsystem] && !set["all"] {
		return
	}
	out.Printf("[%s] %s", subsystem, fmt.Sprintf(format, args...))
}

// Enabled reports whether Trace output for subsystem is currently on.
func Enabled(subsystem string) bool {
	if enabledCount.Load() == 0 {
		return false
	}
	set := enabled.Load().(map[string]bool)
	return set[subsystem] || set["all"]
}

// Enable turns on trace output for the given subsystems.
func Enable(subsystems ...string) {
	mu.Lock()
	defer mu.Unlock()
	next := copyEnabled()
	for _, s := range subsystems {
		next[s] = true
	}
	publish(next)
}

// Disable turns off trace output for the given subsystems.
func Disable(subsystems ...string) {
	mu.Lock()
	defer mu.Unlock()
	next := copyEnabled()
	for _, s := range subsystems {
		delete(next, s)
	}
	publish(next)
}

// copyEnabled and publish must be called with mu held.
func copyEnabled() map[string]bool {
	old := enabled.Load().(map[string]bool)
	next := make(map[string]bool, len(old))
	for k := range old {
		next[k] = true
	}
	return next
}

func publish(next map[string]bool) {
	enabled.Store(next)
	enabledCount.Store(int32(len(next)))
}

// SetOutput redirects trace output, primarily for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out.SetOutput(w)
}

// Configure enables any subsystems named in the STRPOOL_TRACE environment
// variable, a comma-separated list ("reclaim,smalltier" or "all").
func Configure() {
	v := os.Getenv("STRPOOL_TRACE")
	if v == "" {
		return
	}
	names := strings.Split(v, ",")
	for i, s := range names {
		names[i] = strings.TrimSpace(s)
	}
	Enable(names...)
}
