package bench

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/shivanshkc/ubench/pkg/stats"
	"github.com/shivanshkc/ubench/pkg/streams"
	"github.com/shivanshkc/ubench/pkg/sysinfo"
)

const (
	// defaultRangeMultiplier spaces the values generated by Range.
	defaultRangeMultiplier = 8
	// maxFamilySize is the instance count above which a family is reported as suspicious.
	maxFamilySize = 100
)

// aggregationMode is a family's override of the global aggregates-only setting.
type aggregationMode int

const (
	aggregationUnspecified aggregationMode = iota
	aggregationAll
	aggregationAggregatesOnly
)

// family is the registered configuration of a benchmark. It is owned by value
// by the Registry and modified through a Benchmark handle.
type family struct {
	name string
	fn   Func

	args            [][]int64
	argNames        []string
	rangeMultiplier int
	threadCounts    []int

	timeUnit       TimeUnit
	minTime        float64
	iterations     int64
	repetitions    int
	aggregation    aggregationMode
	useRealTime    bool
	useManualTime  bool
	complexity     BigO
	complexityFunc stats.Curve
	statistics     []Statistic
}

// argsCount returns the number of arguments per instance, or -1 if no
// arguments were configured yet.
func (f *family) argsCount() int {
	if len(f.args) == 0 {
		return -1
	}
	return len(f.args[0])
}

// FamilyHandle refers to a registered family without pointing into the
// registry. Handles are invalidated by Registry.Clear.
type FamilyHandle struct {
	Index      int
	Generation uint64
}

// Registry holds the benchmark families of a program.
//
// Registration is expected to happen before running; FindBenchmarks takes a
// read lock so that it can be called concurrently.
type Registry struct {
	mu         sync.RWMutex
	families   []family
	generation uint64

	info   sysinfo.Info
	logger *slog.Logger
}

// NewRegistry creates an empty Registry. The host info is used by
// Benchmark.ThreadPerCPU. A nil logger means slog.Default().
func NewRegistry(info sysinfo.Info, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{info: info, logger: logger}
}

// Register adds a family with default settings and returns a builder to
// configure it.
func (r *Registry) Register(name string, fn Func) *Benchmark {
	check(name != "", "benchmark name must not be empty")
	check(fn != nil, "benchmark %q has no function", name)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.families = append(r.families, family{
		name:            name,
		fn:              fn,
		rangeMultiplier: defaultRangeMultiplier,
		timeUnit:        Nanosecond,
		statistics:      DefaultStatistics(),
	})

	handle := FamilyHandle{Index: len(r.families) - 1, Generation: r.generation}
	return &Benchmark{registry: r, handle: handle}
}

// Clear removes every family. Builders and handles obtained before the call
// become invalid; instances already found keep working since they carry their
// own copy of the configuration.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.families = nil
	r.generation++
}

// Len returns the number of registered families.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.families)
}

// FamilyName resolves a handle. It returns false if the handle is stale.
func (r *Registry) FamilyName(handle FamilyHandle) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if handle.Generation != r.generation || handle.Index < 0 || handle.Index >= len(r.families) {
		return "", false
	}
	return r.families[handle.Index].name, true
}

// FindBenchmarks expands every family into its instances and keeps those
// whose name matches the filter regular expression. An empty filter or "all"
// matches everything.
//
// A filter that matches nothing is not an error; the result is empty.
func (r *Registry) FindBenchmarks(filter string) ([]Instance, error) {
	if filter == "" || filter == "all" {
		filter = "."
	}

	re, err := regexp.Compile(filter)
	if err != nil {
		return nil, fmt.Errorf("invalid benchmark filter %q: %w", filter, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var instances []Instance
	for index := range r.families {
		f := &r.families[index]

		args := f.args
		if len(args) == 0 {
			args = [][]int64{{}}
		}
		threadCounts := f.threadCounts
		if len(threadCounts) == 0 {
			threadCounts = []int{1}
		}

		if size := len(args) * len(threadCounts); size > maxFamilySize {
			r.logger.Warn("benchmark family expands to a large number of instances",
				"family", f.name, "instances", size)
		}

		// Arguments vary slowest, thread counts fastest.
		position := 0
		expanded := streams.FromFunc(func() (Instance, bool) {
			if position >= len(args)*len(threadCounts) {
				return Instance{}, false
			}
			arg, threads := args[position/len(threadCounts)], threadCounts[position%len(threadCounts)]
			position++
			return r.newInstance(index, f, arg, threads), true
		})

		matched := streams.Filter(expanded, func(inst Instance) bool {
			return re.MatchString(inst.Name)
		}).Collect()

		if len(matched) > 0 {
			matched[len(matched)-1].LastInFamily = true
		}
		instances = append(instances, matched...)
	}

	return instances, nil
}

func (r *Registry) newInstance(index int, f *family, args []int64, threads int) Instance {
	inst := Instance{
		Family:         FamilyHandle{Index: index, Generation: r.generation},
		FamilyName:     f.name,
		Func:           f.fn,
		Args:           append([]int64(nil), args...),
		Threads:        threads,
		TimeUnit:       f.timeUnit,
		MinTime:        f.minTime,
		Iterations:     f.iterations,
		Repetitions:    f.repetitions,
		UseRealTime:    f.useRealTime,
		UseManualTime:  f.useManualTime,
		Complexity:     f.complexity,
		ComplexityFunc: f.complexityFunc,
		Statistics:     append([]Statistic(nil), f.statistics...),
		aggregation:    f.aggregation,
	}

	var name strings.Builder
	name.WriteString(f.name)
	for i, arg := range args {
		name.WriteByte('/')
		if i < len(f.argNames) && f.argNames[i] != "" {
			name.WriteString(f.argNames[i])
			name.WriteByte(':')
		}
		name.WriteString(strconv.FormatInt(arg, 10))
	}

	if !isZero(f.minTime) {
		fmt.Fprintf(&name, "/min_time:%0.3f", f.minTime)
	}
	if f.iterations != 0 {
		fmt.Fprintf(&name, "/iterations:%d", f.iterations)
	}
	if f.repetitions != 0 {
		fmt.Fprintf(&name, "/repeats:%d", f.repetitions)
	}
	if f.useManualTime {
		name.WriteString("/manual_time")
	} else if f.useRealTime {
		name.WriteString("/real_time")
	}
	if len(f.threadCounts) > 0 {
		fmt.Fprintf(&name, "/threads:%d", threads)
	}

	inst.Name = name.String()
	return inst
}

// Instance is one runnable combination of a family, its arguments and a
// thread count. Its configuration is a snapshot taken by FindBenchmarks.
type Instance struct {
	Name         string
	Family       FamilyHandle
	FamilyName   string
	Func         Func
	Args         []int64
	Threads      int
	LastInFamily bool

	TimeUnit       TimeUnit
	MinTime        float64
	Iterations     int64
	Repetitions    int
	UseRealTime    bool
	UseManualTime  bool
	Complexity     BigO
	ComplexityFunc stats.Curve
	Statistics     []Statistic

	aggregation aggregationMode
}

// Key returns the identity of the instance used to match it across executions.
func (i Instance) Key() InstanceKey {
	return InstanceKey{Family: i.FamilyName, Args: i.Args, Threads: i.Threads}
}

// aggregatesOnly resolves the family's report mode against the global setting.
func (i Instance) aggregatesOnly(global bool) bool {
	switch i.aggregation {
	case aggregationAll:
		return false
	case aggregationAggregatesOnly:
		return true
	default:
		return global
	}
}
