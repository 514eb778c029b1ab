package suite_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dqcheck/dqcheck/internal/adapters/outbound/suite"
	"github.com/dqcheck/dqcheck/internal/domain"
)

func writeSuite(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoad_JSON(t *testing.T) {
	p := writeSuite(t, "drugs.json", `{
  "name": "drugs_suite",
  "expectations": [
    {"type": "expect_column_values_to_not_be_null", "kwargs": {"column": "name", "mostly": 0.95}},
    {"type": "expect_table_row_count_to_be_between", "kwargs": {"min_value": 1, "max_value": 1000}, "meta": {"owner": "qa"}}
  ],
  "meta": {"great_expectations_version": "1.0.0"}
}`)

	s, err := suite.New().Load(p)
	require.NoError(t, err)
	assert.Equal(t, "drugs_suite", s.Name)
	require.Len(t, s.Expectations, 2)
	assert.Equal(t, "name", s.Expectations[0].Column())
	assert.Equal(t, json.Number("0.95"), s.Expectations[0].Kwargs["mostly"])
	assert.Equal(t, json.Number("1000"), s.Expectations[1].Kwargs["max_value"])
	assert.Equal(t, "qa", s.Expectations[1].Meta["owner"])
	assert.Equal(t, "1.0.0", s.Meta["great_expectations_version"])
}

func TestLoad_KwargsRoundTripUnchanged(t *testing.T) {
	p := writeSuite(t, "s.json", `{"name":"s","expectations":[{"type":"expect_column_values_to_be_in_set","kwargs":{"column":"c","value_set":[1,2.50,"x"]}}]}`)

	s, err := suite.New().Load(p)
	require.NoError(t, err)
	out, err := json.Marshal(s.Expectations[0].Kwargs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"column":"c","value_set":[1,2.50,"x"]}`, string(out))
	assert.Contains(t, string(out), "2.50")
}

func TestLoad_LegacyKeysMigrated(t *testing.T) {
	p := writeSuite(t, "legacy.json", `{
  "expectation_suite_name": "legacy_suite",
  "expectations": [
    {"expectation_type": "expect_column_to_exist", "kwargs": {"column": "id"}}
  ]
}`)

	s, err := suite.New().Load(p)
	require.NoError(t, err)
	assert.Equal(t, "legacy_suite", s.Name)
	assert.Equal(t, "expect_column_to_exist", s.Expectations[0].Type)
}

func TestLoad_ClassStyleTypes(t *testing.T) {
	p := writeSuite(t, "classy.json", `{"name":"c","expectations":[{"type":"ExpectColumnValuesToNotBeNull","kwargs":{"column":"id"}}]}`)

	s, err := suite.New().Load(p)
	require.NoError(t, err)
	assert.Equal(t, "expect_column_values_to_not_be_null", s.Expectations[0].Type)
}

func TestLoad_YAML(t *testing.T) {
	p := writeSuite(t, "drugs.yaml", `
name: drugs_yaml
expectations:
  - type: expect_column_values_to_be_between
    kwargs:
      column: dosage_mg
      min_value: 10
      max_value: 500
`)

	s, err := suite.New().Load(p)
	require.NoError(t, err)
	assert.Equal(t, "drugs_yaml", s.Name)
	assert.Equal(t, json.Number("500"), s.Expectations[0].Kwargs["max_value"])
}

func TestLoad_NameDefaultsToFileStem(t *testing.T) {
	p := writeSuite(t, "orders_suite.json", `{"expectations":[]}`)

	s, err := suite.New().Load(p)
	require.NoError(t, err)
	assert.Equal(t, "orders_suite", s.Name)
	assert.Equal(t, 0, s.Len())
}

func TestLoad_MissingKwargsBecomeEmpty(t *testing.T) {
	p := writeSuite(t, "s.json", `{"name":"s","expectations":[{"type":"expect_table_row_count_to_equal"}]}`)

	s, err := suite.New().Load(p)
	require.NoError(t, err)
	assert.NotNil(t, s.Expectations[0].Kwargs)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := suite.New().Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, domain.ErrSuiteNotFound)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty":             ``,
		"not json":          `{"name": `,
		"array root":        `[1, 2]`,
		"no expectations":   `{"name": "x"}`,
		"type not string":   `{"expectations": [{"type": 3, "kwargs": {}}]}`,
		"kwargs not object": `{"expectations": [{"type": "expect_column_to_exist", "kwargs": []}]}`,
		"missing type":      `{"expectations": [{"kwargs": {}}]}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			p := writeSuite(t, "bad.json", content)
			_, err := suite.New().Load(p)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidSuite)
		})
	}
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "expect_table_row_count_to_equal", suite.SnakeCase("ExpectTableRowCountToEqual"))
	assert.Equal(t, "expect_column_to_exist", suite.SnakeCase("expect_column_to_exist"))
	assert.Equal(t, "", suite.SnakeCase(""))
}
