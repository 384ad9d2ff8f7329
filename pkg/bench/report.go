package bench

import (
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/shivanshkc/ubench/pkg/sysinfo"
)

// Kind identifies what a Run record represents.
type Kind string

const (
	KindNormal     Kind = "normal"
	KindError      Kind = "error"
	KindStatistic  Kind = "statistic"
	KindComplexity Kind = "complexity"
	KindComparison Kind = "comparison"
)

// BigOCoefficients holds the fitted scale factor of a complexity curve.
type BigOCoefficients struct {
	RealTime float64 `json:"real_time_coefficient"`
	CPUTime  float64 `json:"cpu_time_coefficient"`
}

// RMS holds the normalized root-mean-square residual of a complexity fit.
type RMS struct {
	RealTime float64 `json:"real_time"`
	CPUTime  float64 `json:"cpu_time"`
}

// Run is a single reported record: one accepted attempt, an aggregate over
// repetitions, or a complexity fit.
//
// Accumulated times are expressed in TimeUnit and summed over the attempt's
// iterations. Iteration times are the accumulated times divided by Iterations.
type Run struct {
	Name            string `json:"name"`
	Kind            Kind   `json:"kind"`
	Iterations      int64  `json:"iterations"`
	Threads         int    `json:"threads,omitempty"`
	RepetitionIndex int    `json:"repetition_index,omitempty"`

	RealAccumulatedTime float64  `json:"real_accumulated_time"`
	RealIterationTime   float64  `json:"real_iteration_time"`
	CPUAccumulatedTime  float64  `json:"cpu_accumulated_time"`
	CPUIterationTime    float64  `json:"cpu_iteration_time"`
	TimeUnit            TimeUnit `json:"time_unit,omitempty"`

	BytesPerSecond float64  `json:"bytes_per_second,omitempty"`
	ItemsPerSecond float64  `json:"items_per_second,omitempty"`
	Label          string   `json:"label,omitempty"`
	ErrorMessage   string   `json:"error_message,omitempty"`
	Counters       Counters `json:"counters,omitempty"`

	ComplexityN      int64             `json:"complexity_n,omitempty"`
	Complexity       BigO              `json:"complexity,omitempty"`
	ComplexityString string            `json:"complexity_string,omitempty"`
	BigO             *BigOCoefficients `json:"big_o,omitempty"`
	RMS              *RMS              `json:"rms,omitempty"`
}

// InstanceKey identifies a benchmark instance across separate executions.
type InstanceKey struct {
	Family  string  `json:"family"`
	Args    []int64 `json:"args"`
	Threads int     `json:"threads"`
}

// InstanceReport groups every record produced for one instance.
type InstanceReport struct {
	Name                 string      `json:"name"`
	Family               int         `json:"family"`
	Instance             InstanceKey `json:"instance"`
	Runs                 []Run       `json:"runs"`
	Stats                []Run       `json:"stats"`
	ReportAggregatesOnly bool        `json:"report_aggregates_only"`
}

// Reported returns the records a reporter should display.
//
// Under aggregates-only mode only the statistics are shown, unless there are
// none (for example when every repetition failed), in which case the raw
// runs are shown so that errors stay visible.
func (r InstanceReport) Reported() []Run {
	if r.ReportAggregatesOnly && len(r.Stats) > 0 {
		return r.Stats
	}

	out := make([]Run, 0, len(r.Runs)+len(r.Stats))
	out = append(out, r.Runs...)
	return append(out, r.Stats...)
}

// Context describes the environment of a benchmark execution. It is sent to
// reporters before any result.
type Context struct {
	sysinfo.Info

	Date       time.Time `json:"date"`
	RunID      string    `json:"run_id"`
	Executable string    `json:"executable"`

	// NameFieldWidth is the width needed to align instance and statistic names.
	NameFieldWidth int `json:"-"`
}

// minNameFieldWidth is the narrowest name column a console reporter uses.
const minNameFieldWidth = 10

// NewContext builds the Context for a set of instances.
func NewContext(info sysinfo.Info, instances []Instance, cfg Config) Context {
	executable, _ := os.Executable()

	ctx := Context{
		Info:           info,
		Date:           time.Now(),
		RunID:          uuid.NewString(),
		Executable:     executable,
		NameFieldWidth: minNameFieldWidth,
	}

	var statWidth int
	for _, inst := range instances {
		ctx.NameFieldWidth = max(ctx.NameFieldWidth, len(inst.Name))

		repetitions := inst.Repetitions
		if repetitions == 0 {
			repetitions = cfg.Repetitions
		}
		if repetitions <= 1 {
			continue
		}
		for _, stat := range inst.Statistics {
			statWidth = max(statWidth, len(stat.Name))
		}
	}

	if statWidth > 0 {
		ctx.NameFieldWidth += 1 + statWidth
	}
	return ctx
}
