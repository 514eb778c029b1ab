// Package suite loads expectation suites from JSON or YAML documents.
package suite

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/fatih/camelcase"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/dqcheck/dqcheck/internal/domain"
)

//go:embed suite.schema.json
var schemaSource string

var envelope = jsonschema.MustCompileString("suite.schema.json", schemaSource)

// Loader implements domain.SuiteLoader.
type Loader struct{}

func New() *Loader { return &Loader{} }

// Load reads the suite at path. Legacy keys are migrated, class-style
// expectation names are converted to snake case, and the document envelope
// is checked against the embedded schema. Kwargs are not interpreted.
func (l *Loader) Load(path string) (*domain.Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSuiteNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSuite, err)
	}

	doc, err := decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidSuite, path, err)
	}
	s, err := Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidSuite, path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// decode parses JSON or YAML into generic JSON values. Numbers come back as
// json.Number so kwargs survive the round trip into the report unchanged.
func decode(path string, data []byte) (any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("document is empty")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
		var err error
		if data, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("converting yaml: %w", err)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing json: %w", err)
	}
	return doc, nil
}

// Parse turns a decoded suite document into a Suite.
func Parse(doc any) (*domain.Suite, error) {
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("suite must be a JSON object")
	}
	migrate(m)

	if err := envelope.Validate(m); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var s domain.Suite
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	for i := range s.Expectations {
		if s.Expectations[i].Kwargs == nil {
			s.Expectations[i].Kwargs = map[string]any{}
		}
	}
	return &s, nil
}

// migrate rewrites legacy v0 keys in place.
func migrate(m map[string]any) {
	if legacy, ok := m["expectation_suite_name"]; ok {
		if _, has := m["name"]; !has {
			m["name"] = legacy
		}
		delete(m, "expectation_suite_name")
	}

	exps, ok := m["expectations"].([]any)
	if !ok {
		return
	}
	for _, e := range exps {
		exp, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if legacy, ok := exp["expectation_type"]; ok {
			if _, has := exp["type"]; !has {
				exp["type"] = legacy
			}
			delete(exp, "expectation_type")
		}
		if t, ok := exp["type"].(string); ok {
			exp["type"] = SnakeCase(t)
		}
	}
}

// SnakeCase converts ExpectColumnValuesToNotBeNull into
// expect_column_values_to_not_be_null. Names already containing an
// underscore or starting lower case are returned as is.
func SnakeCase(name string) string {
	if name == "" || strings.Contains(name, "_") || !unicode.IsUpper([]rune(name)[0]) {
		return name
	}
	parts := camelcase.Split(name)
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, "_")
}
