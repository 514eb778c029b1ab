// Package report persists validation results as JSON documents.
package report

import (
	"encoding/json"
	"fmt"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dqcheck/dqcheck/internal/domain"
)

// JSONWriter implements domain.ReportWriter.
type JSONWriter struct{}

func NewJSONWriter() *JSONWriter { return &JSONWriter{} }

// Write creates parent directories as needed and writes result as indented
// JSON. The file is written under a temporary name and renamed into place.
func (w *JSONWriter) Write(path string, result *domain.ValidationResult) error {
	data, err := encode(path, result)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// maxSuffix bounds the -N suffixes Create tries before giving up.
const maxSuffix = 1000

// Create writes result to path, or to the first free path-N variant when
// path already exists. Files are opened with O_EXCL so concurrent runs
// never share a report.
func (w *JSONWriter) Create(path string, result *domain.ValidationResult) (string, error) {
	data, err := encode(path, result)
	if err != nil {
		return "", err
	}

	for n := 0; n < maxSuffix; n++ {
		candidate := domain.NumberedPath(path, n)
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("writing report: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			_ = os.Remove(candidate)
			return "", fmt.Errorf("writing report: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("writing report: %w", err)
		}
		return candidate, nil
	}
	return "", fmt.Errorf("writing report: no free name for %s", path)
}

func encode(path string, result *domain.ValidationResult) ([]byte, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating report dir: %w", err)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return append(data, '\n'), nil
}

// Read loads a previously written report.
func Read(path string) (*domain.ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r domain.ValidationResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return &r, nil
}
