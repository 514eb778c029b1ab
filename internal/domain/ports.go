package domain

// DatasetLoader reads a tabular file into a Dataset.
type DatasetLoader interface {
	Load(path string, opts LoadOptions) (*Dataset, error)
}

// LoadOptions tune how a dataset file is parsed.
type LoadOptions struct {
	Delimiter  rune
	NullValues []string
	Sheet      string
}

// SuiteLoader reads an expectation suite document.
type SuiteLoader interface {
	Load(path string) (*Suite, error)
}

// ReportWriter persists a validation result. Write replaces whatever is at
// path; Create never overwrites and returns the path actually used, which
// carries a -N suffix when path is taken.
type ReportWriter interface {
	Write(path string, result *ValidationResult) error
	Create(path string, result *ValidationResult) (string, error)
}

// DocsBuilder renders a human-readable HTML report.
type DocsBuilder interface {
	Build(path string, result *ValidationResult) error
}

// DocsOpener opens a built report for the user, usually in a browser.
type DocsOpener interface {
	Open(path string) error
}

// ConfigLoader loads project configuration from a directory.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// RunHistory stores and retrieves past validation runs.
type RunHistory interface {
	Save(projectPath string, entry RunEntry) error
	Load(projectPath string) ([]RunEntry, error)
}

// DatasetScanner finds dataset files below a directory.
type DatasetScanner interface {
	Scan(root string) ([]string, error)
}

// GitInfo reports version-control details for a directory.
type GitInfo interface {
	CommitHash(path string) (string, error)
}
