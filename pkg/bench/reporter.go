package bench

import (
	"errors"
)

// Reporter consumes benchmark results as they are produced.
//
// ReportContext is called once before any result. Returning false aborts the
// execution before the first benchmark runs. ReportRuns is called once per
// instance, after all of its repetitions completed. Finalize is called once at
// the end and returns any error the reporter deferred, such as a failed write.
type Reporter interface {
	ReportContext(ctx Context) bool
	ReportRuns(report InstanceReport)
	Finalize() error
}

// MultiReporter fans every call out to a list of reporters.
type MultiReporter []Reporter

// ReportContext forwards the context to every reporter. All reporters are
// called; the result is true only if all of them accepted the context.
func (m MultiReporter) ReportContext(ctx Context) bool {
	ok := true
	for _, r := range m {
		ok = r.ReportContext(ctx) && ok
	}
	return ok
}

// ReportRuns forwards the report to every reporter.
func (m MultiReporter) ReportRuns(report InstanceReport) {
	for _, r := range m {
		r.ReportRuns(report)
	}
}

// Finalize finalizes every reporter and joins their errors.
func (m MultiReporter) Finalize() error {
	var errs []error
	for _, r := range m {
		if err := r.Finalize(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
