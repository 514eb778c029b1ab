package domain

// Suite is a named list of expectations to run against a dataset.
type Suite struct {
	Name          string              `json:"name"                      yaml:"name"`
	ID            string              `json:"id,omitempty"              yaml:"id,omitempty"`
	DataAssetType string              `json:"data_asset_type,omitempty" yaml:"data_asset_type,omitempty"`
	Expectations  []ExpectationConfig `json:"expectations"              yaml:"expectations"`
	Meta          map[string]any      `json:"meta,omitempty"            yaml:"meta,omitempty"`
	Notes         any                 `json:"notes,omitempty"           yaml:"notes,omitempty"`
}

// ExpectationConfig is a single rule. Kwargs are passed through to the
// report unchanged.
type ExpectationConfig struct {
	ID     string         `json:"id,omitempty"    yaml:"id,omitempty"`
	Type   string         `json:"type"            yaml:"type"`
	Kwargs map[string]any `json:"kwargs"          yaml:"kwargs"`
	Meta   map[string]any `json:"meta,omitempty"  yaml:"meta,omitempty"`
	Notes  any            `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Column returns the "column" kwarg, or "" for table-level expectations.
func (e ExpectationConfig) Column() string {
	if e.Kwargs == nil {
		return ""
	}
	s, _ := e.Kwargs["column"].(string)
	return s
}

// Len reports the number of expectations in the suite.
func (s Suite) Len() int { return len(s.Expectations) }
