// Package telemetry exports benchmark results to metric systems.
//
// Both exporters implement bench.Reporter and are attached next to the
// human-readable reporters. Times are exported in seconds regardless of the
// unit a benchmark displays.
package telemetry

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shivanshkc/ubench/pkg/bench"
)

// ErrRegistrationFailed is returned when a collector cannot be registered.
var ErrRegistrationFailed = errors.New("metric registration failed")

const namespace = "ubench"

// Prometheus records every result as a gauge on a private registry and
// writes the registry in the node exporter textfile format when finalized.
type Prometheus struct {
	registry *prometheus.Registry
	path     string

	info           *prometheus.GaugeVec
	realTime       *prometheus.GaugeVec
	cpuTime        *prometheus.GaugeVec
	iterations     *prometheus.GaugeVec
	bytesPerSecond *prometheus.GaugeVec
	itemsPerSecond *prometheus.GaugeVec
	counters       *prometheus.GaugeVec
	complexity     *prometheus.GaugeVec
	errors         *prometheus.CounterVec
}

// NewPrometheus creates the exporter. An empty path keeps the metrics in
// memory only, which is what Registry consumers such as tests want.
func NewPrometheus(path string) (*Prometheus, error) {
	runLabels := []string{"name", "kind"}

	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		path:     path,
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "run_info",
			Help: "Information about the host and the run. Always 1.",
		}, []string{"run_id", "cpu_brand", "go_version"}),
		realTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "real_time_per_iteration_seconds",
			Help: "Wall-clock (or manual) time per iteration.",
		}, runLabels),
		cpuTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "cpu_time_per_iteration_seconds",
			Help: "CPU time per iteration.",
		}, runLabels),
		iterations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "iterations",
			Help: "Iterations summed over all threads.",
		}, runLabels),
		bytesPerSecond: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "bytes_per_second",
			Help: "Byte throughput.",
		}, runLabels),
		itemsPerSecond: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "items_per_second",
			Help: "Item throughput.",
		}, runLabels),
		counters: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "user_counter",
			Help: "Finalized user counters.",
		}, []string{"name", "kind", "counter"}),
		complexity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "complexity_coefficient",
			Help: "Fitted coefficient of the complexity curve.",
		}, []string{"name", "curve", "basis"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "errors_total",
			Help: "Runs that skipped with an error.",
		}, []string{"name"}),
	}

	collectors := []prometheus.Collector{
		p.info, p.realTime, p.cpuTime, p.iterations, p.bytesPerSecond,
		p.itemsPerSecond, p.counters, p.complexity, p.errors,
	}
	for _, collector := range collectors {
		if err := p.registry.Register(collector); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
		}
	}
	return p, nil
}

// Registry exposes the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// ReportContext records the run info metric.
func (p *Prometheus) ReportContext(ctx bench.Context) bool {
	p.info.WithLabelValues(ctx.RunID, ctx.BrandName, ctx.GoVersion).Set(1)
	return true
}

// ReportRuns records raw runs and aggregates alike; the kind label tells them apart.
func (p *Prometheus) ReportRuns(report bench.InstanceReport) {
	for _, run := range report.Runs {
		p.record(run)
	}
	for _, run := range report.Stats {
		p.record(run)
	}
}

// Finalize writes the textfile when a path was configured.
func (p *Prometheus) Finalize() error {
	if p.path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(p.path, p.registry); err != nil {
		return fmt.Errorf("error while writing the prometheus textfile: %w", err)
	}
	return nil
}

func (p *Prometheus) record(run bench.Run) {
	kind := string(run.Kind)

	switch run.Kind {
	case bench.KindError:
		p.errors.WithLabelValues(run.Name).Inc()
		return
	case bench.KindComplexity:
		if run.BigO != nil {
			p.complexity.WithLabelValues(run.Name, run.ComplexityString, "real").Set(run.BigO.RealTime)
			p.complexity.WithLabelValues(run.Name, run.ComplexityString, "cpu").Set(run.BigO.CPUTime)
		}
		return
	}

	multiplier := run.TimeUnit.Multiplier()
	p.realTime.WithLabelValues(run.Name, kind).Set(run.RealIterationTime / multiplier)
	p.cpuTime.WithLabelValues(run.Name, kind).Set(run.CPUIterationTime / multiplier)
	p.iterations.WithLabelValues(run.Name, kind).Set(float64(run.Iterations))

	if run.BytesPerSecond > 0 {
		p.bytesPerSecond.WithLabelValues(run.Name, kind).Set(run.BytesPerSecond)
	}
	if run.ItemsPerSecond > 0 {
		p.itemsPerSecond.WithLabelValues(run.Name, kind).Set(run.ItemsPerSecond)
	}
	for name, counter := range run.Counters {
		p.counters.WithLabelValues(run.Name, kind, name).Set(counter.Value)
	}
}
