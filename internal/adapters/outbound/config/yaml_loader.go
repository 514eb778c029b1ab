package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dqcheck/dqcheck/internal/domain"
)

// FileName is the project configuration file looked up in the project root.
const FileName = ".dqcheck.yaml"

// Environment holds the DQCHECK_* variables. They win over .dqcheck.yaml.
type Environment struct {
	ReportsDir   string `env:"DQCHECK_REPORTS_DIR"`
	ResultFormat string `env:"DQCHECK_RESULT_FORMAT"`
	LogLevel     string `env:"DQCHECK_LOG_LEVEL" envDefault:"warn"`
	NoOpen       bool   `env:"DQCHECK_NO_OPEN"`
}

// ReadEnvironment parses the process environment.
func ReadEnvironment() (Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return Environment{}, fmt.Errorf("reading environment: %w", err)
	}
	return e, nil
}

// LoadEnv loads the dotenv files that exist and skips the rest. Variables
// already set in the process are not overwritten. It returns how many files
// were loaded.
func LoadEnv(envFiles ...string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// YAMLLoader implements domain.ConfigLoader by reading .dqcheck.yaml and
// applying environment overrides on top.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .dqcheck.yaml from projectPath.
// Returns DefaultConfig (plus environment overrides) if the file does not exist.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	if _, err := LoadEnv(filepath.Join(projectPath, ".env")); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("loading .env: %w", err)
	}

	cfg := domain.DefaultConfig()
	data, err := os.ReadFile(filepath.Join(projectPath, FileName))
	switch {
	case err == nil:
		var file domain.ProjectConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", FileName, err)
		}
		// Validate before merging so typos in the user's file are reported
		// against the file.
		if err := file.Validate(); err != nil {
			return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", FileName, err)
		}
		cfg = cfg.Merge(file)
	case !errors.Is(err, os.ErrNotExist):
		return domain.ProjectConfig{}, err
	}

	e, err := ReadEnvironment()
	if err != nil {
		return domain.ProjectConfig{}, err
	}
	cfg = applyEnvironment(cfg, e)
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid environment: %w", err)
	}
	return cfg, nil
}

func applyEnvironment(cfg domain.ProjectConfig, e Environment) domain.ProjectConfig {
	override := domain.ProjectConfig{
		ReportsDir:   e.ReportsDir,
		ResultFormat: e.ResultFormat,
	}
	if e.NoOpen {
		no := false
		override.OpenBrowser = &no
	}
	return cfg.Merge(override)
}
