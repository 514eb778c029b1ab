package domain

import "time"

// RunEntry is one line of run history.
type RunEntry struct {
	Timestamp    string  `json:"timestamp"`
	RunID        string  `json:"run_id"`
	Dataset      string  `json:"dataset"`
	Suite        string  `json:"suite"`
	Success      bool    `json:"success"`
	Evaluated    int     `json:"evaluated"`
	Successful   int     `json:"successful"`
	Unsuccessful int     `json:"unsuccessful"`
	Percent      float64 `json:"success_percent"`
	ReportPath   string  `json:"report_path,omitempty"`
	CommitHash   string  `json:"commit_hash,omitempty"`
}

// NewRunEntry builds a history entry from a finished result.
func NewRunEntry(r *ValidationResult, reportPath string) RunEntry {
	return RunEntry{
		Timestamp:    r.Meta.RunTime.UTC().Format(time.RFC3339),
		RunID:        r.Meta.RunID,
		Dataset:      r.Meta.DatasetPath,
		Suite:        r.SuiteName,
		Success:      r.Success,
		Evaluated:    r.Statistics.EvaluatedExpectations,
		Successful:   r.Statistics.SuccessfulExpectations,
		Unsuccessful: r.Statistics.UnsuccessfulExpectations,
		Percent:      r.Statistics.SuccessPercent,
		ReportPath:   reportPath,
		CommitHash:   r.Meta.CommitHash,
	}
}
