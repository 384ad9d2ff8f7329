package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/shivanshkc/ubench/pkg/bench"
)

const meterName = "github.com/shivanshkc/ubench"

// OTel records results as OpenTelemetry instruments.
type OTel struct {
	provider metric.MeterProvider

	realTime   metric.Float64Histogram
	cpuTime    metric.Float64Histogram
	iterations metric.Int64Counter
	errors     metric.Int64Counter
}

// NewOTel creates the instruments on a meter of provider.
func NewOTel(provider metric.MeterProvider) (*OTel, error) {
	meter := provider.Meter(meterName)
	o := &OTel{provider: provider}

	var err error
	if o.realTime, err = meter.Float64Histogram("ubench.iteration.real_time",
		metric.WithUnit("s"), metric.WithDescription("Wall-clock time per iteration.")); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	if o.cpuTime, err = meter.Float64Histogram("ubench.iteration.cpu_time",
		metric.WithUnit("s"), metric.WithDescription("CPU time per iteration.")); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	if o.iterations, err = meter.Int64Counter("ubench.iterations",
		metric.WithDescription("Iterations executed by accepted runs.")); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	if o.errors, err = meter.Int64Counter("ubench.errors",
		metric.WithDescription("Runs that skipped with an error.")); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	return o, nil
}

// ReportContext accepts any context.
func (o *OTel) ReportContext(bench.Context) bool {
	return true
}

// ReportRuns records the raw runs of an instance. Aggregates are left to the
// metric backend, which computes its own from the histograms.
func (o *OTel) ReportRuns(report bench.InstanceReport) {
	ctx := context.Background()
	for _, run := range report.Runs {
		attrs := metric.WithAttributes(attribute.String("benchmark", run.Name))

		if run.Kind == bench.KindError {
			o.errors.Add(ctx, 1, attrs)
			continue
		}

		multiplier := run.TimeUnit.Multiplier()
		o.realTime.Record(ctx, run.RealIterationTime/multiplier, attrs)
		o.cpuTime.Record(ctx, run.CPUIterationTime/multiplier, attrs)
		o.iterations.Add(ctx, run.Iterations, attrs)
	}
}

// Finalize flushes the provider when it supports flushing.
func (o *OTel) Finalize() error {
	flusher, ok := o.provider.(interface{ ForceFlush(context.Context) error })
	if !ok {
		return nil
	}
	if err := flusher.ForceFlush(context.Background()); err != nil {
		return fmt.Errorf("error while flushing metrics: %w", err)
	}
	return nil
}

// NewStdoutMeterProvider returns a provider that prints its metrics as JSON to w
// when flushed or shut down.
func NewStdoutMeterProvider(w io.Writer) (*sdkmetric.MeterProvider, error) {
	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w), stdoutmetric.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("error while creating the stdout exporter: %w", err)
	}
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter))), nil
}
