package domain

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"
)

// Status strings used in history entries and the terminal summary.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
)

// ValidationResult is the outcome of running a suite against a dataset.
// Its JSON form is the persisted report.
type ValidationResult struct {
	Success    bool                `json:"success"`
	Results    []ExpectationResult `json:"results"`
	Statistics Statistics          `json:"statistics"`
	SuiteName  string              `json:"suite_name"`
	Meta       RunMeta             `json:"meta"`
}

// ExpectationResult is the outcome of a single expectation.
type ExpectationResult struct {
	Success       bool              `json:"success"`
	Expectation   ExpectationConfig `json:"expectation_config"`
	Result        map[string]any    `json:"result"`
	ExceptionInfo ExceptionInfo     `json:"exception_info"`
}

// ExceptionInfo records an error raised while evaluating an expectation.
type ExceptionInfo struct {
	RaisedException  bool   `json:"raised_exception"`
	ExceptionMessage string `json:"exception_message,omitempty"`
}

// Statistics summarises the per-expectation results.
type Statistics struct {
	EvaluatedExpectations    int     `json:"evaluated_expectations"`
	SuccessfulExpectations   int     `json:"successful_expectations"`
	UnsuccessfulExpectations int     `json:"unsuccessful_expectations"`
	SuccessPercent           float64 `json:"success_percent"`
}

// RunMeta describes the run that produced a result.
type RunMeta struct {
	RunID       string    `json:"run_id"`
	RunTime     time.Time `json:"run_time"`
	DatasetName string    `json:"dataset_name"`
	DatasetPath string    `json:"dataset_path"`
	RowCount    int       `json:"row_count"`
	SuitePath   string    `json:"suite_path,omitempty"`
	CommitHash  string    `json:"commit_hash,omitempty"`
	ToolVersion string    `json:"tool_version,omitempty"`
}

// ComputeStatistics derives Statistics from results. An empty result set is
// reported as 100% successful.
func ComputeStatistics(results []ExpectationResult) Statistics {
	st := Statistics{EvaluatedExpectations: len(results)}
	for _, r := range results {
		if r.Success {
			st.SuccessfulExpectations++
		}
	}
	st.UnsuccessfulExpectations = st.EvaluatedExpectations - st.SuccessfulExpectations
	if st.EvaluatedExpectations == 0 {
		st.SuccessPercent = 100
		return st
	}
	pct := float64(st.SuccessfulExpectations) * 100 / float64(st.EvaluatedExpectations)
	st.SuccessPercent = math.Round(pct*100) / 100
	return st
}

// Status returns StatusPassed or StatusFailed.
func (r *ValidationResult) Status() string {
	if r.Success {
		return StatusPassed
	}
	return StatusFailed
}

// Failed returns the results that did not succeed, in suite order.
func (r *ValidationResult) Failed() []ExpectationResult {
	var out []ExpectationResult
	for _, er := range r.Results {
		if !er.Success {
			out = append(out, er)
		}
	}
	return out
}

// ReportTimestampLayout is the UTC timestamp embedded in default report names.
const ReportTimestampLayout = "20060102T150405Z"

// DefaultReportPath returns <dir>/<stem>_<timestamp>.json for a run started at t.
func DefaultReportPath(dir, stem string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.json", stem, t.UTC().Format(ReportTimestampLayout)))
}

// NumberedPath returns path with a -n suffix before its extension. n == 0
// returns path unchanged.
func NumberedPath(path string, n int) string {
	if n == 0 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), n, ext)
}

// DocsPathFor returns the HTML path that sits next to a JSON report.
func DocsPathFor(reportPath string) string {
	return strings.TrimSuffix(reportPath, filepath.Ext(reportPath)) + ".html"
}
