package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResultFormat controls how much detail each expectation result carries.
type ResultFormat string

const (
	ResultFormatBooleanOnly ResultFormat = "BOOLEAN_ONLY"
	ResultFormatBasic       ResultFormat = "BASIC"
	ResultFormatSummary     ResultFormat = "SUMMARY"
	ResultFormatComplete    ResultFormat = "COMPLETE"
)

// ValidResultFormats enumerates all recognized result formats.
var ValidResultFormats = []ResultFormat{
	ResultFormatBooleanOnly,
	ResultFormatBasic,
	ResultFormatSummary,
	ResultFormatComplete,
}

// ParseResultFormat accepts any casing of a known result format.
func ParseResultFormat(s string) (ResultFormat, error) {
	if s == "" {
		return ResultFormatBasic, nil
	}
	rf := ResultFormat(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range ValidResultFormats {
		if rf == v {
			return rf, nil
		}
	}
	return "", fmt.Errorf("unknown result_format %q (valid: BOOLEAN_ONLY, BASIC, SUMMARY, COMPLETE)", s)
}

// DefaultNullValues are the cell values treated as missing.
var DefaultNullValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "<NA>"}

// DefaultReportsDir is where reports land when no --out is given.
const DefaultReportsDir = "reports"

// ProjectConfig holds project-level configuration loaded from .dqcheck.yaml.
type ProjectConfig struct {
	ReportsDir      string   `yaml:"reports_dir"      json:"reports_dir,omitempty"`
	ResultFormat    string   `yaml:"result_format"    json:"result_format,omitempty"`
	CatchExceptions *bool    `yaml:"catch_exceptions" json:"catch_exceptions,omitempty"`
	NullValues      []string `yaml:"null_values"      json:"null_values,omitempty"`
	Delimiter       string   `yaml:"delimiter"        json:"delimiter,omitempty"`
	Sheet           string   `yaml:"sheet"            json:"sheet,omitempty"`
	HTML            bool     `yaml:"html"             json:"html,omitempty"`
	OpenBrowser     *bool    `yaml:"open_browser"     json:"open_browser,omitempty"`
	History         *bool    `yaml:"history"          json:"history,omitempty"`
}

// DefaultConfig returns the configuration used when no .dqcheck.yaml exists.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{
		ReportsDir:   DefaultReportsDir,
		ResultFormat: string(ResultFormatBasic),
	}
}

// EffectiveReportsDir falls back to DefaultReportsDir.
func (c ProjectConfig) EffectiveReportsDir() string {
	if c.ReportsDir == "" {
		return DefaultReportsDir
	}
	return c.ReportsDir
}

// ReportsDirIn resolves a relative reports dir against projectPath.
func (c ProjectConfig) ReportsDirIn(projectPath string) string {
	dir := c.EffectiveReportsDir()
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(projectPath, dir)
}

// EffectiveNullValues falls back to DefaultNullValues.
func (c ProjectConfig) EffectiveNullValues() []string {
	if c.NullValues == nil {
		return DefaultNullValues
	}
	return c.NullValues
}

// EffectiveDelimiter returns the CSV field separator, ',' by default.
func (c ProjectConfig) EffectiveDelimiter() rune {
	if c.Delimiter == "" {
		return ','
	}
	if c.Delimiter == `\t` {
		return '\t'
	}
	return []rune(c.Delimiter)[0]
}

// CatchExceptionsEnabled defaults to true.
func (c ProjectConfig) CatchExceptionsEnabled() bool {
	return c.CatchExceptions == nil || *c.CatchExceptions
}

// ShouldOpenBrowser defaults to true.
func (c ProjectConfig) ShouldOpenBrowser() bool {
	return c.OpenBrowser == nil || *c.OpenBrowser
}

// HistoryEnabled defaults to true.
func (c ProjectConfig) HistoryEnabled() bool {
	return c.History == nil || *c.History
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ProjectConfig) Validate() error {
	if _, err := ParseResultFormat(c.ResultFormat); err != nil {
		return err
	}

	if c.Delimiter != "" && c.Delimiter != `\t` {
		r := []rune(c.Delimiter)
		if len(r) != 1 {
			return fmt.Errorf("delimiter must be a single character (got %q)", c.Delimiter)
		}
		if r[0] == '"' || r[0] == '\n' || r[0] == '\r' {
			return fmt.Errorf("delimiter %q is not allowed", c.Delimiter)
		}
	}

	if strings.ContainsRune(c.ReportsDir, 0) {
		return fmt.Errorf("reports_dir contains a NUL byte")
	}

	return nil
}

// Merge overlays explicit (non-zero) values from override onto c.
func (c ProjectConfig) Merge(override ProjectConfig) ProjectConfig {
	result := c
	if override.ReportsDir != "" {
		result.ReportsDir = override.ReportsDir
	}
	if override.ResultFormat != "" {
		result.ResultFormat = override.ResultFormat
	}
	if override.CatchExceptions != nil {
		result.CatchExceptions = override.CatchExceptions
	}
	if override.NullValues != nil {
		result.NullValues = override.NullValues
	}
	if override.Delimiter != "" {
		result.Delimiter = override.Delimiter
	}
	if override.Sheet != "" {
		result.Sheet = override.Sheet
	}
	if override.HTML {
		result.HTML = true
	}
	if override.OpenBrowser != nil {
		result.OpenBrowser = override.OpenBrowser
	}
	if override.History != nil {
		result.History = override.History
	}
	return result
}
