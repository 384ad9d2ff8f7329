package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shivanshkc/ubench/pkg/bench"
)

// Document is the JSON output of a run.
type Document struct {
	Context    bench.Context          `json:"context"`
	Benchmarks []bench.InstanceReport `json:"benchmarks"`
}

// JSON collects the whole run and writes it as one indented document.
type JSON struct {
	out io.Writer
	doc Document
}

// NewJSON creates a JSON reporter writing to out.
func NewJSON(out io.Writer) *JSON {
	return &JSON{out: out, doc: Document{Benchmarks: []bench.InstanceReport{}}}
}

// ReportContext records the context.
func (j *JSON) ReportContext(ctx bench.Context) bool {
	j.doc.Context = ctx
	return true
}

// ReportRuns records the full instance report, raw runs included.
func (j *JSON) ReportRuns(report bench.InstanceReport) {
	j.doc.Benchmarks = append(j.doc.Benchmarks, report)
}

// Finalize writes the document.
func (j *JSON) Finalize() error {
	return WriteJSON(j.out, j.doc)
}

// WriteJSON writes any value as indented JSON.
func WriteJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("error while encoding JSON: %w", err)
	}
	return nil
}
