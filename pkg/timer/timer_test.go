package timer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shivanshkc/ubench/pkg/timer"
)

// fakeClock returns scripted readings. Each call pops the next value.
type fakeClock struct {
	wall []time.Duration
	cpu  []time.Duration
}

func (f *fakeClock) Now() time.Duration {
	v := f.wall[0]
	f.wall = f.wall[1:]
	return v
}

func (f *fakeClock) ThreadCPU() time.Duration {
	v := f.cpu[0]
	f.cpu = f.cpu[1:]
	return v
}

func TestTimer_Accumulation(t *testing.T) {
	t.Run("Intervals are summed", func(t *testing.T) {
		clock := &fakeClock{
			wall: []time.Duration{0, time.Second, 2 * time.Second, 4 * time.Second},
			cpu:  []time.Duration{0, 500 * time.Millisecond, time.Second, 1500 * time.Millisecond},
		}
		tm := timer.NewWithClock(clock)

		tm.Start()
		tm.Stop()
		tm.Start()
		tm.Stop()

		assert.InDelta(t, 3.0, tm.RealTimeUsed(), 1e-9)
		assert.InDelta(t, 1.0, tm.CPUTimeUsed(), 1e-9)
		assert.Zero(t, tm.ManualTimeUsed())
	})

	t.Run("Negative CPU delta is clamped to zero", func(t *testing.T) {
		clock := &fakeClock{
			wall: []time.Duration{0, time.Millisecond},
			cpu:  []time.Duration{time.Second, 900 * time.Millisecond},
		}
		tm := timer.NewWithClock(clock)

		tm.Start()
		tm.Stop()

		assert.Zero(t, tm.CPUTimeUsed())
		assert.InDelta(t, 0.001, tm.RealTimeUsed(), 1e-9)
	})

	t.Run("Manual time is independent of the running state", func(t *testing.T) {
		tm := timer.New()
		tm.SetIterationTime(0.25)
		tm.SetIterationTime(0.5)
		assert.InDelta(t, 0.75, tm.ManualTimeUsed(), 1e-12)
	})
}

func TestTimer_Misuse(t *testing.T) {
	t.Run("Start on a running timer panics", func(t *testing.T) {
		tm := timer.New()
		tm.Start()
		assert.Panics(t, func() { tm.Start() })
	})

	t.Run("Stop on a stopped timer panics", func(t *testing.T) {
		tm := timer.New()
		assert.Panics(t, func() { tm.Stop() })
	})

	t.Run("Accessors panic while running", func(t *testing.T) {
		tm := timer.New()
		tm.Start()
		assert.True(t, tm.Running())
		assert.Panics(t, func() { tm.RealTimeUsed() })
		assert.Panics(t, func() { tm.CPUTimeUsed() })
		assert.Panics(t, func() { tm.ManualTimeUsed() })

		tm.Stop()
		assert.False(t, tm.Running())
		assert.NotPanics(t, func() { tm.RealTimeUsed() })
	})
}

func TestSystemClock(t *testing.T) {
	clock := timer.SystemClock{}

	first := clock.Now()
	time.Sleep(5 * time.Millisecond)
	assert.Greater(t, clock.Now(), first, "Wall clock should advance.")

	assert.GreaterOrEqual(t, timer.ThreadCPUUsage(), time.Duration(0))
	assert.GreaterOrEqual(t, timer.ProcessCPUUsage(), time.Duration(0))
}
