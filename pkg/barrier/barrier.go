// Package barrier implements a reusable rendezvous point for a fixed group of
// goroutines whose membership may shrink while they are running.
package barrier

import (
	"sync"
)

// Barrier blocks callers of Wait until every running party has arrived.
//
// The zero value is not usable; construct with New.
type Barrier struct {
	mu   sync.Mutex
	cond *sync.Cond

	running int // Parties still taking part.
	entered int // Parties waiting in the current phase.
	phase   int // Incremented every time a phase completes.
}

// New returns a Barrier for n parties. It panics if n is not positive.
func New(n int) *Barrier {
	if n <= 0 {
		panic("barrier: party count must be positive")
	}

	b := &Barrier{running: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until all running parties have called Wait for the current
// phase. Exactly one caller per phase, the one that completes it, gets true.
func (b *Barrier) Wait() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.entered >= b.running {
		panic("barrier: more waiters than running parties")
	}
	b.entered++

	if b.entered < b.running {
		phase := b.phase
		for b.phase == phase && b.entered != b.running {
			b.cond.Wait()
		}
		// Another party completed the phase.
		if b.phase != phase {
			return false
		}
		// A party left through RemoveThread and this waiter is now the last one.
	}

	b.phase++
	b.entered = 0
	b.cond.Broadcast()
	return true
}

// RemoveThread permanently withdraws one party. Waiters that were only
// blocked on the departing party are woken up and one of them completes the
// phase.
func (b *Barrier) RemoveThread() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.running--
	if b.entered != 0 {
		b.cond.Broadcast()
	}
}
