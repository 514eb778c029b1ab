package docs_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dqcheck/dqcheck/internal/adapters/outbound/docs"
	"github.com/dqcheck/dqcheck/internal/domain"
)

func sampleResult() *domain.ValidationResult {
	results := []domain.ExpectationResult{
		{
			Success:     true,
			Expectation: domain.ExpectationConfig{Type: "expect_table_row_count_to_be_between", Kwargs: map[string]any{"min_value": 1}},
			Result:      map[string]any{"observed_value": 5},
		},
		{
			Success:     false,
			Expectation: domain.ExpectationConfig{Type: "expect_column_values_to_be_between", Kwargs: map[string]any{"column": "dosage_mg", "max_value": 600}},
			Result:      map[string]any{"element_count": 5, "unexpected_count": 1, "partial_unexpected_list": []any{1000}},
		},
		{
			Success:       false,
			Expectation:   domain.ExpectationConfig{Type: "expect_<script>", Kwargs: map[string]any{}},
			Result:        map[string]any{},
			ExceptionInfo: domain.ExceptionInfo{RaisedException: true, ExceptionMessage: "unknown expectation type"},
		},
	}
	return &domain.ValidationResult{
		Success:    false,
		SuiteName:  "drugs_suite",
		Results:    results,
		Statistics: domain.ComputeStatistics(results),
		Meta: domain.RunMeta{
			RunID:       "run-1",
			RunTime:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			DatasetName: "drugs",
			RowCount:    5,
		},
	}
}

func buildDoc(t *testing.T, r *domain.ValidationResult) (*goquery.Document, string) {
	t.Helper()
	p := filepath.Join(t.TempDir(), "nested", "report.html")
	require.NoError(t, docs.NewHTMLBuilder().Build(p, r))
	f, err := os.Open(p)
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	raw, err := os.ReadFile(p)
	require.NoError(t, err)
	return doc, string(raw)
}

func TestHTMLBuilder_Summary(t *testing.T) {
	doc, _ := buildDoc(t, sampleResult())

	assert.Equal(t, "RESULT: DATA QUALITY FAILED", strings.TrimSpace(doc.Find("#status").Text()))
	assert.True(t, doc.Find("#status").HasClass("failed"))
	assert.Equal(t, "3", doc.Find("#summary .evaluated").Text())
	assert.Equal(t, "1", doc.Find("#summary .successful").Text())
	assert.Equal(t, "2", doc.Find("#summary .unsuccessful").Text())
	assert.Equal(t, "drugs", doc.Find("#dataset").Text())
	assert.Equal(t, "drugs_suite", doc.Find("#suite").Text())
}

func TestHTMLBuilder_ResultRows(t *testing.T) {
	doc, raw := buildDoc(t, sampleResult())

	rows := doc.Find("#results tbody tr")
	require.Equal(t, 3, rows.Length())
	assert.True(t, rows.Eq(0).HasClass("passed"))
	assert.True(t, rows.Eq(1).HasClass("failed"))
	assert.Equal(t, "dosage_mg", rows.Eq(1).Find(".column").Text())
	assert.Contains(t, rows.Eq(1).Find(".unexpected").Text(), "[1000]")
	assert.Contains(t, rows.Eq(2).Find(".exception").Text(), "unknown expectation type")

	assert.NotContains(t, raw, "<script>", "values are escaped")
	assert.Equal(t, "expect_<script>", rows.Eq(2).Find(".type").Text())
}

func TestHTMLBuilder_Passed(t *testing.T) {
	r := &domain.ValidationResult{Success: true, Statistics: domain.ComputeStatistics(nil)}
	doc, _ := buildDoc(t, r)
	assert.True(t, doc.Find("#status").HasClass("passed"))
	assert.Equal(t, 0, doc.Find("#results tbody tr").Length())
}

func TestBrowserOpener_Open(t *testing.T) {
	var got string
	o := docs.NewTestOpener(func(path string) error {
		got = path
		return nil
	})

	require.NoError(t, o.Open("report.html"))
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "report.html", filepath.Base(got))
}

func TestBrowserOpener_StartFailure(t *testing.T) {
	o := docs.NewTestOpener(func(string) error { return errors.New("no display") })
	err := o.Open("report.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no display")
}
