// Package report renders benchmark results for humans and machines.
//
// Every reporter implements bench.Reporter, so any combination of them can be
// attached to a run through bench.MultiReporter.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/shivanshkc/ubench/pkg/bench"
)

// FormatTime renders a time value with a precision that keeps roughly three
// significant digits.
func FormatTime(value float64) string {
	switch abs := math.Abs(value); {
	case abs == 0:
		return "0"
	case abs < 10:
		return fmt.Sprintf("%.2f", value)
	case abs < 100:
		return fmt.Sprintf("%.1f", value)
	default:
		return fmt.Sprintf("%.0f", value)
	}
}

// FormatDuration renders a duration using the largest unit that keeps the
// value above one.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}

	// Format based on magnitude.
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%.0fns", float64(d.Nanoseconds()))
	case d < time.Millisecond:
		return fmt.Sprintf("%.2fµs", float64(d.Nanoseconds())/1000)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1000000)
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// IterationDuration converts a per-iteration time expressed in unit into a Duration.
func IterationDuration(value float64, unit bench.TimeUnit) time.Duration {
	return time.Duration(math.Round(value / unit.Multiplier() * float64(time.Second)))
}

// FormatBytesRate renders a byte throughput such as "1.2 GiB/s".
func FormatBytesRate(bytesPerSecond float64) string {
	return humanize.IBytes(uint64(bytesPerSecond)) + "/s"
}

// FormatItemsRate renders an item throughput such as "12.3M/s".
func FormatItemsRate(itemsPerSecond float64) string {
	return humanize.SIWithDigits(itemsPerSecond, 1, "/s")
}

// FormatCounter renders a counter value with an SI prefix. Rate counters get a "/s" suffix.
func FormatCounter(counter bench.Counter) string {
	suffix := ""
	if counter.Flags&bench.CounterIsRate != 0 {
		suffix = "/s"
	}
	return strings.ReplaceAll(humanize.SIWithDigits(counter.Value, 3, suffix), " ", "")
}

// FormatPercent renders a relative change such as "+12.50%".
func FormatPercent(change float64) string {
	return fmt.Sprintf("%+.2f%%", change*100)
}

// counterNames returns the counter names of a run in a stable order.
func counterNames(counters bench.Counters) []string {
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// familyName strips the "_BigO" suffix of a complexity record.
func familyName(run bench.Run) string {
	return strings.TrimSuffix(run.Name, "_BigO")
}
