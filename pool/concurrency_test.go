package pool

import (
	"fmt"
	"runtime"
	"sync"
	"testing"
	"unsafe"
)

// TestConcurrentInternSameString is scenario S5: many goroutines racing to
// intern the same string must all observe the correct text, and the pool
// must end up with a bounded number of backing allocations despite the
// race.
func TestConcurrentInternSameString(t *testing.T) {
	p := New()
	defer p.Release()

	const goroutines = 8
	const itersPerGoroutine = 1000
	const target = "the-same-string-every-time"

	var wg sync.WaitGroup
	handles := make([]Handle, goroutines*itersPerGoroutine)

	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			for i := 0; i < itersPerGoroutine; i++ {
				handles[g*itersPerGoroutine+i] = p.Intern(target)
			}
		}(g)
	}
	wg.Wait()

	for _, h := range handles {
		if h.Deref() != target {
			t.Fatalf("a concurrently-interned handle derefs to %q, want %q", h.Deref(), target)
		}
	}

	distinctSlots := map[[3]uintptr]bool{}
	for _, h := range handles {
		distinctSlots[slotKey(h)] = true
	}
	if len(distinctSlots) > goroutines {
		t.Errorf("found %d distinct backing slots for one string across %d goroutines; expected a small, bounded number", len(distinctSlots), goroutines)
	}

	for _, h := range handles {
		h.Release()
	}
}

func slotKey(h Handle) [3]uintptr {
	return [3]uintptr{uintptr(unsafe.Pointer(h.small)), uintptr(h.offset), uintptr(unsafe.Pointer(h.large))}
}

// TestConcurrentInternDictionary covers property 7: N goroutines each intern M
// strings drawn from a fixed dictionary; every resulting handle must deref
// to its source string, and the interned set must stay within the
// dictionary.
func TestConcurrentInternDictionary(t *testing.T) {
	p := New(WithShards(4))
	defer p.Release()

	dict := []string{
		"type:user", "type:document", "status:active", "status:pending",
		"priority:high", "priority:low",
		"a-fairly-long-tag-that-lands-in-the-large-tier-because-it-exceeds-one-hundred-and-twenty-six-bytes-by-quite-a-margin-here-and-then-some-more",
	}

	const goroutines = 16
	const perGoroutine = 500

	var wg sync.WaitGroup
	results := make([][]Handle, goroutines)

	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			local := make([]Handle, perGoroutine)
			for i := 0; i < perGoroutine; i++ {
				local[i] = p.Intern(dict[(g+i)%len(dict)])
			}
			results[g] = local
		}(g)
	}
	wg.Wait()

	for g := 0; g < goroutines; g++ {
		for i, h := range results[g] {
			want := dict[(g+i)%len(dict)]
			if h.Deref() != want {
				t.Fatalf("goroutine %d handle %d: got %q, want %q", g, i, h.Deref(), want)
			}
		}
	}

	for _, local := range results {
		for _, h := range local {
			h.Release()
		}
	}
}

// TestRefcountClosure checks that after releasing every Pool and Handle
// created during a test, the pool's backing pages and entries become
// collectible. A deterministic free isn't observable on a GC'd runtime,
// so this forces a GC and checks that heap usage returns close to its
// baseline.
func TestRefcountClosure(t *testing.T) {
	runtime.GC()
	var before runtime.MemStats
	runtime.ReadMemStats(&before)

	func() {
		p := New()
		defer p.Release()
		for i := 0; i < 5000; i++ {
			h := p.Intern(fmt.Sprintf("refcount-closure-%d", i))
			h.Release()
		}
	}()

	runtime.GC()
	runtime.GC()
	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	if after.HeapObjects > before.HeapObjects+1000 {
		t.Errorf("heap objects grew by %d after releasing every Pool/Handle; backing store may not be collectible",
			after.HeapObjects-before.HeapObjects)
	}
}

func TestRefcountUnderflowPanics(t *testing.T) {
	p := New()
	h := p.Intern("will-be-released-one-too-many-times")

	// Two valid releases: one for the Intern-held reference, one for the
	// Pool itself. The backing store is reclaimed on the second.
	h.Release()
	p.Release()

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic when releasing past zero references")
		}
	}()
	// A third release has nothing left to release: refcount underflows.
	h.Release()
}
