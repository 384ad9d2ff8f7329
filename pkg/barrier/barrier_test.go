package barrier_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivanshkc/ubench/pkg/barrier"
)

func TestBarrier_Wait(t *testing.T) {
	t.Run("Single party never blocks", func(t *testing.T) {
		b := barrier.New(1)
		assert.True(t, b.Wait())
		assert.True(t, b.Wait())
	})

	t.Run("Exactly one last party per phase", func(t *testing.T) {
		const parties, phases = 8, 5
		b := barrier.New(parties)

		var lastCount atomic.Int32
		var wg sync.WaitGroup
		for range parties {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range phases {
					if b.Wait() {
						lastCount.Add(1)
					}
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(phases), lastCount.Load())
	})

	t.Run("No party passes before all arrive", func(t *testing.T) {
		b := barrier.New(2)
		var passed atomic.Bool

		go func() {
			b.Wait()
			passed.Store(true)
		}()

		time.Sleep(20 * time.Millisecond)
		assert.False(t, passed.Load(), "The first party should still be blocked.")

		b.Wait()
		require.Eventually(t, passed.Load, time.Second, time.Millisecond)
	})

	t.Run("Too many waiters panics", func(t *testing.T) {
		b := barrier.New(1)
		b.RemoveThread()
		assert.Panics(t, func() { b.Wait() })
	})

	t.Run("Non-positive party count panics", func(t *testing.T) {
		assert.Panics(t, func() { barrier.New(0) })
	})
}

func TestBarrier_RemoveThread(t *testing.T) {
	t.Run("Removing the missing party releases the waiters", func(t *testing.T) {
		b := barrier.New(3)

		results := make(chan bool, 2)
		for range 2 {
			go func() { results <- b.Wait() }()
		}

		// Let both waiters block before the third party leaves.
		time.Sleep(20 * time.Millisecond)
		b.RemoveThread()

		first, second := <-results, <-results
		assert.True(t, first != second, "Exactly one waiter should complete the phase.")
	})

	t.Run("Barrier keeps working with fewer parties", func(t *testing.T) {
		b := barrier.New(2)
		b.RemoveThread()
		assert.True(t, b.Wait())
	})
}
