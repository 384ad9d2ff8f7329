package bench

// CounterFlags controls how a Counter is finalized at the end of an attempt.
type CounterFlags int

const (
	// CounterDefault reports the summed value as is.
	CounterDefault CounterFlags = 0
	// CounterIsRate divides the value by the timing-basis seconds.
	CounterIsRate CounterFlags = 1
	// CounterAvgThreads divides the value by the number of threads.
	CounterAvgThreads CounterFlags = 2
	// CounterAvgThreadsRate applies both CounterIsRate and CounterAvgThreads.
	CounterAvgThreadsRate = CounterIsRate | CounterAvgThreads
)

// Counter is a user-defined measurement attached to a benchmark run.
type Counter struct {
	Value float64      `json:"value"`
	Flags CounterFlags `json:"flags"`
}

// Counters maps counter names to their values.
type Counters map[string]Counter

// Increment adds every counter of other into c. Counters not yet present in c
// are inserted with the flags of other.
func (c Counters) Increment(other Counters) {
	for name, counter := range other {
		existing, ok := c[name]
		if !ok {
			c[name] = counter
			continue
		}
		existing.Value += counter.Value
		c[name] = existing
	}
}

// Finish converts summed counters into their reported form.
func (c Counters) Finish(seconds float64, threads int) {
	for name, counter := range c {
		if counter.Flags&CounterIsRate != 0 && seconds != 0 {
			counter.Value /= seconds
		}
		if counter.Flags&CounterAvgThreads != 0 && threads > 0 {
			counter.Value /= float64(threads)
		}
		c[name] = counter
	}
}

// SameFlags reports whether c and other carry the same counter names with
// identical flags.
func (c Counters) SameFlags(other Counters) bool {
	if len(c) != len(other) {
		return false
	}
	for name, counter := range c {
		o, ok := other[name]
		if !ok || o.Flags != counter.Flags {
			return false
		}
	}
	return true
}

// clone returns a copy of the counters that does not alias c.
func (c Counters) clone() Counters {
	if c == nil {
		return nil
	}
	out := make(Counters, len(c))
	for name, counter := range c {
		out[name] = counter
	}
	return out
}
