// Package docs renders validation results as a standalone HTML page and
// opens it in the user's browser.
package docs

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dqcheck/dqcheck/internal/domain"
)

//go:embed report.html.tmpl
var pageSource string

var page = template.Must(template.New("report").Parse(pageSource))

// HTMLBuilder implements domain.DocsBuilder.
type HTMLBuilder struct{}

func NewHTMLBuilder() *HTMLBuilder { return &HTMLBuilder{} }

type pageData struct {
	Dataset     string
	Suite       string
	RowCount    int
	RunID       string
	RunTime     string
	CommitHash  string
	Status      string
	StatusLabel string
	Stats       domain.Statistics
	Rows        []rowData
}

type rowData struct {
	Index      int
	Status     string
	Type       string
	Column     string
	Kwargs     string
	Observed   string
	Unexpected string
	Exception  string
}

// Build writes the HTML page for result to path, creating parent dirs.
func (b *HTMLBuilder) Build(path string, result *domain.ValidationResult) error {
	var buf bytes.Buffer
	if err := page.Execute(&buf, newPageData(result)); err != nil {
		return fmt.Errorf("rendering data docs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating docs dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing data docs: %w", err)
	}
	return nil
}

func newPageData(r *domain.ValidationResult) pageData {
	d := pageData{
		Dataset:     r.Meta.DatasetName,
		Suite:       r.SuiteName,
		RowCount:    r.Meta.RowCount,
		RunID:       r.Meta.RunID,
		CommitHash:  r.Meta.CommitHash,
		Status:      r.Status(),
		StatusLabel: strings.ToUpper(r.Status()),
		Stats:       r.Statistics,
	}
	if d.Dataset == "" {
		d.Dataset = r.Meta.DatasetPath
	}
	if !r.Meta.RunTime.IsZero() {
		d.RunTime = r.Meta.RunTime.UTC().Format(time.RFC3339)
	}

	for i, er := range r.Results {
		row := rowData{
			Index:  i + 1,
			Status: domain.StatusPassed,
			Type:   er.Expectation.Type,
			Column: er.Expectation.Column(),
			Kwargs: compactJSON(er.Expectation.Kwargs),
		}
		if !er.Success {
			row.Status = domain.StatusFailed
		}
		if er.ExceptionInfo.RaisedException {
			row.Exception = er.ExceptionInfo.ExceptionMessage
		}
		row.Observed = describeObserved(er.Result)
		if list, ok := er.Result["partial_unexpected_list"]; ok && !er.Success {
			row.Unexpected = compactJSON(list)
		}
		d.Rows = append(d.Rows, row)
	}
	return d
}

func describeObserved(res map[string]any) string {
	if v, ok := res["observed_value"]; ok {
		return compactJSON(v)
	}
	if n, ok := res["unexpected_count"]; ok {
		if total, ok := res["element_count"]; ok {
			return fmt.Sprintf("%v of %v unexpected", n, total)
		}
		return fmt.Sprintf("%v unexpected", n)
	}
	return ""
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
