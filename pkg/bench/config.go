package bench

import (
	"errors"
	"fmt"
)

// MaxIterations is the upper bound of the iteration count of a single attempt.
const MaxIterations int64 = 1_000_000_000

// Config holds the process-wide defaults that apply to every family that does
// not override them.
type Config struct {
	// MinTime is the minimum number of seconds an attempt must be measured for
	// before its result is accepted.
	MinTime float64 `yaml:"min_time"`
	// Repetitions is the number of accepted attempts per instance.
	Repetitions int `yaml:"repetitions"`
	// ReportAggregatesOnly hides the raw runs of repeated instances and only
	// reports their statistics.
	ReportAggregatesOnly bool `yaml:"report_aggregates_only"`
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		MinTime:     0.5,
		Repetitions: 1,
	}
}

// Validate checks that the configuration can drive a run.
func (c Config) Validate() error {
	var errs []error
	if c.MinTime <= 0 {
		errs = append(errs, fmt.Errorf("min time must be positive, got %v", c.MinTime))
	}
	if c.Repetitions <= 0 {
		errs = append(errs, fmt.Errorf("repetitions must be positive, got %d", c.Repetitions))
	}
	return errors.Join(errs...)
}
