// Package compare computes relative changes between two sets of benchmark
// results.
//
// Inputs are decoded JSON trees (as produced by encoding/json into an `any`),
// so that results written by older or newer versions of the tool can be
// compared as long as they carry the fields used here.
package compare

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
)

var (
	// ErrUnknownNode is returned when a node is neither a run, a report, a
	// report list nor a result document.
	ErrUnknownNode = errors.New("unrecognized result node")
	// ErrShapeMismatch is returned when the two inputs classify differently.
	ErrShapeMismatch = errors.New("inputs have different shapes")
	// ErrNoMatchingInstance is returned when an instance of the old list has
	// no counterpart in the new one.
	ErrNoMatchingInstance = errors.New("no matching instance")
	// ErrMissingMean is returned when a repeated report has no mean statistic.
	ErrMissingMean = errors.New("no mean statistic")
	// ErrMissingField is returned when a record lacks a field needed for the comparison.
	ErrMissingField = errors.New("missing field")
)

// NodeKind is the classification of a decoded result node.
type NodeKind int

const (
	NodeUnknown NodeKind = iota
	NodeRun
	NodeReport
	NodeReportList
	NodeDocument
)

// runKinds are the record kinds that can be compared directly.
var runKinds = map[string]bool{"normal": true, "error": true, "statistic": true}

// Classify inspects the structural markers of a node.
func Classify(node any) NodeKind {
	switch n := node.(type) {
	case []any:
		// An empty list is a valid, empty report list.
		if len(n) == 0 || Classify(n[0]) == NodeReport {
			return NodeReportList
		}
	case map[string]any:
		if hasKeys(n, "context", "benchmarks") {
			return NodeDocument
		}
		if hasKeys(n, "runs", "family") {
			return NodeReport
		}
		if kind, ok := n["kind"].(string); ok && runKinds[kind] {
			return NodeRun
		}
	}
	return NodeUnknown
}

// Change holds the relative change of the per-iteration times.
type Change struct {
	CPUIterationTime  float64 `json:"cpu_iteration_time"`
	RealIterationTime float64 `json:"real_iteration_time"`
}

// Result is one comparison record.
//
// OldResult and NewResult are the nodes as they were compared: whole reports
// for reports and report lists, the runs themselves otherwise. OldRun and
// NewRun are the runs the change was computed from.
type Result struct {
	Name       string         `json:"name"`
	Kind       string         `json:"kind"`
	OldResult  map[string]any `json:"old_result"`
	NewResult  map[string]any `json:"new_result"`
	Comparison Change         `json:"comparison"`

	OldRun map[string]any `json:"-"`
	NewRun map[string]any `json:"-"`
}

// Load decodes one result tree.
func Load(r io.Reader) (any, error) {
	var node any
	if err := json.NewDecoder(r).Decode(&node); err != nil {
		return nil, fmt.Errorf("error while decoding results: %w", err)
	}
	return node, nil
}

// Compare pairs the old and new nodes and computes their relative changes.
//
// Report lists are paired by instance identity; every old instance must have
// a counterpart. Whole result documents are compared through their benchmark lists.
func Compare(oldNode, newNode any) ([]Result, error) {
	oldNode, newNode = unwrapDocument(oldNode), unwrapDocument(newNode)

	oldKind, newKind := Classify(oldNode), Classify(newNode)
	if oldKind == NodeUnknown || newKind == NodeUnknown {
		return nil, ErrUnknownNode
	}
	if oldKind != newKind {
		return nil, ErrShapeMismatch
	}

	switch oldKind {
	case NodeRun:
		result, err := compareRuns(oldNode.(map[string]any), newNode.(map[string]any))
		if err != nil {
			return nil, err
		}
		return []Result{result}, nil

	case NodeReport:
		result, err := compareReports(oldNode.(map[string]any), newNode.(map[string]any))
		if err != nil {
			return nil, err
		}
		return []Result{result}, nil

	default:
		return compareLists(oldNode.([]any), newNode.([]any))
	}
}

// CalculateChange returns the relative change from oldVal to newVal.
//
// Two zeros yield no change. A zero old value is compared against the
// midpoint of both values so that the result stays finite.
func CalculateChange(oldVal, newVal float64) float64 {
	if isZero(oldVal) && isZero(newVal) {
		return 0
	}
	if isZero(oldVal) {
		return (newVal - oldVal) / ((oldVal + newVal) / 2)
	}
	return (newVal - oldVal) / math.Abs(oldVal)
}

func compareLists(oldList, newList []any) ([]Result, error) {
	results := make([]Result, 0, len(oldList))
	for _, oldItem := range oldList {
		oldReport, ok := oldItem.(map[string]any)
		if !ok {
			return nil, ErrUnknownNode
		}

		newReport, ok := findMatchingInstance(newList, oldReport["instance"])
		if !ok {
			return nil, fmt.Errorf("%w for %v", ErrNoMatchingInstance, oldReport["name"])
		}

		result, err := compareReports(oldReport, newReport)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func findMatchingInstance(list []any, instance any) (map[string]any, bool) {
	for _, item := range list {
		report, ok := item.(map[string]any)
		if ok && reflect.DeepEqual(report["instance"], instance) {
			return report, true
		}
	}
	return nil, false
}

func compareReports(oldReport, newReport map[string]any) (Result, error) {
	oldRun, err := runOrMeanStat(oldReport)
	if err != nil {
		return Result{}, err
	}
	newRun, err := runOrMeanStat(newReport)
	if err != nil {
		return Result{}, err
	}

	change, err := changeOf(oldRun, newRun)
	if err != nil {
		return Result{}, err
	}
	return newResult(oldReport, newReport, oldRun, newRun, change), nil
}

func compareRuns(oldRun, newRun map[string]any) (Result, error) {
	change, err := changeOf(oldRun, newRun)
	if err != nil {
		return Result{}, err
	}
	return newResult(oldRun, newRun, oldRun, newRun, change), nil
}

func newResult(oldNamed, newNamed, oldRun, newRun map[string]any, change Change) Result {
	return Result{
		Name:       fmt.Sprintf("%v/compare_to/%v", oldNamed["name"], newNamed["name"]),
		Kind:       "comparison",
		OldResult:  oldNamed,
		NewResult:  newNamed,
		Comparison: change,
		OldRun:     oldRun,
		NewRun:     newRun,
	}
}

// runOrMeanStat returns the only run of a report, or its mean statistic when
// the instance was repeated.
func runOrMeanStat(report map[string]any) (map[string]any, error) {
	runs, _ := report["runs"].([]any)
	if len(runs) == 1 {
		run, ok := runs[0].(map[string]any)
		if !ok {
			return nil, ErrUnknownNode
		}
		return run, nil
	}

	meanName := fmt.Sprintf("%v_mean", report["name"])
	statistics, _ := report["stats"].([]any)
	for _, item := range statistics {
		stat, ok := item.(map[string]any)
		if ok && stat["name"] == meanName {
			return stat, nil
		}
	}
	return nil, fmt.Errorf("%w for %v", ErrMissingMean, report["name"])
}

func changeOf(oldRun, newRun map[string]any) (Change, error) {
	var values [4]float64
	fields := [4]struct {
		run  map[string]any
		name string
	}{
		{oldRun, "cpu_iteration_time"}, {newRun, "cpu_iteration_time"},
		{oldRun, "real_iteration_time"}, {newRun, "real_iteration_time"},
	}

	for i, field := range fields {
		v, ok := field.run[field.name].(float64)
		if !ok {
			return Change{}, fmt.Errorf("%w %q in %v", ErrMissingField, field.name, field.run["name"])
		}
		values[i] = v
	}

	return Change{
		CPUIterationTime:  CalculateChange(values[0], values[1]),
		RealIterationTime: CalculateChange(values[2], values[3]),
	}, nil
}

func unwrapDocument(node any) any {
	if Classify(node) == NodeDocument {
		return node.(map[string]any)["benchmarks"]
	}
	return node
}

func hasKeys(m map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := m[key]; !ok {
			return false
		}
	}
	return true
}

func isZero(v float64) bool {
	return math.Abs(v) < 2.220446049250313e-16
}
