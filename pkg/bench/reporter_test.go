package bench_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shivanshkc/ubench/pkg/bench"
)

// failingReporter returns err from Finalize.
type failingReporter struct {
	recordingReporter
	err error
}

func (f *failingReporter) Finalize() error {
	f.finalizeCount++
	return f.err
}

func TestMultiReporter(t *testing.T) {
	t.Run("Every reporter sees every call", func(t *testing.T) {
		first, second := &recordingReporter{}, &recordingReporter{}
		multi := bench.MultiReporter{first, second}

		assert.True(t, multi.ReportContext(bench.Context{RunID: "id"}))
		multi.ReportRuns(bench.InstanceReport{Name: "BM"})
		assert.NoError(t, multi.Finalize())

		for _, r := range []*recordingReporter{first, second} {
			assert.Equal(t, "id", r.context.RunID)
			assert.Len(t, r.reports, 1)
			assert.Equal(t, 1, r.finalizeCount)
		}
	})

	t.Run("One rejection rejects but all are asked", func(t *testing.T) {
		rejecting, accepting := &recordingReporter{rejectContext: true}, &recordingReporter{}
		multi := bench.MultiReporter{rejecting, accepting}

		assert.False(t, multi.ReportContext(bench.Context{RunID: "id"}))
		assert.Equal(t, "id", accepting.context.RunID)
	})

	t.Run("Finalize errors are joined", func(t *testing.T) {
		errA, errB := errors.New("a"), errors.New("b")
		multi := bench.MultiReporter{&failingReporter{err: errA}, &recordingReporter{}, &failingReporter{err: errB}}

		err := multi.Finalize()
		assert.ErrorIs(t, err, errA)
		assert.ErrorIs(t, err, errB)
	})
}
