package domain_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/dqcheck/dqcheck/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestComputeStatistics_Empty(t *testing.T) {
	st := domain.ComputeStatistics(nil)
	assert.Equal(t, 0, st.EvaluatedExpectations)
	assert.Equal(t, 100.0, st.SuccessPercent)
}

func TestComputeStatistics_Rounds(t *testing.T) {
	st := domain.ComputeStatistics([]domain.ExpectationResult{
		{Success: true}, {Success: false}, {Success: false},
	})
	assert.Equal(t, 3, st.EvaluatedExpectations)
	assert.Equal(t, 1, st.SuccessfulExpectations)
	assert.Equal(t, 2, st.UnsuccessfulExpectations)
	assert.Equal(t, 33.33, st.SuccessPercent)
}

func TestValidationResult_StatusAndFailed(t *testing.T) {
	r := &domain.ValidationResult{
		Success: false,
		Results: []domain.ExpectationResult{
			{Success: true, Expectation: domain.ExpectationConfig{Type: "a"}},
			{Success: false, Expectation: domain.ExpectationConfig{Type: "b"}},
		},
	}
	assert.Equal(t, domain.StatusFailed, r.Status())
	failed := r.Failed()
	assert.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].Expectation.Type)

	r.Success = true
	assert.Equal(t, domain.StatusPassed, r.Status())
}

func TestNewRunEntry(t *testing.T) {
	r := &domain.ValidationResult{
		Success:    true,
		SuiteName:  "drugs_suite",
		Statistics: domain.Statistics{EvaluatedExpectations: 2, SuccessfulExpectations: 2, SuccessPercent: 100},
		Meta: domain.RunMeta{
			RunID:       "run-1",
			RunTime:     time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
			DatasetPath: "data/drugs.csv",
			CommitHash:  "abc123",
		},
	}
	e := domain.NewRunEntry(r, "reports/drugs_20240301T123000Z.json")
	assert.Equal(t, "2024-03-01T12:30:00Z", e.Timestamp)
	assert.Equal(t, "run-1", e.RunID)
	assert.Equal(t, "data/drugs.csv", e.Dataset)
	assert.Equal(t, "drugs_suite", e.Suite)
	assert.True(t, e.Success)
	assert.Equal(t, 2, e.Evaluated)
	assert.Equal(t, "abc123", e.CommitHash)
	assert.Equal(t, "reports/drugs_20240301T123000Z.json", e.ReportPath)
}

func TestExpectationConfig_Column(t *testing.T) {
	assert.Equal(t, "name", domain.ExpectationConfig{Kwargs: map[string]any{"column": "name"}}.Column())
	assert.Empty(t, domain.ExpectationConfig{}.Column())
	assert.Empty(t, domain.ExpectationConfig{Kwargs: map[string]any{"column": 3}}.Column())
}

func TestDefaultReportPath(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, filepath.Join("reports", "drugs_20240506T050809Z.json"), domain.DefaultReportPath("reports", "drugs", at))
}

func TestNumberedPath(t *testing.T) {
	p := filepath.Join("reports", "drugs_20240506T050809Z.json")
	assert.Equal(t, p, domain.NumberedPath(p, 0))
	assert.Equal(t, filepath.Join("reports", "drugs_20240506T050809Z-2.json"), domain.NumberedPath(p, 2))
	assert.Equal(t, "out-1", domain.NumberedPath("out", 1))
}

func TestDocsPathFor(t *testing.T) {
	assert.Equal(t, filepath.Join("reports", "drugs_20240506T050809Z.html"),
		domain.DocsPathFor(filepath.Join("reports", "drugs_20240506T050809Z.json")))
	assert.Equal(t, "out.html", domain.DocsPathFor("out"))
}
