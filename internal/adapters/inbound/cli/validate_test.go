package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dqcheck/dqcheck/internal/adapters/inbound/cli"
	"github.com/dqcheck/dqcheck/internal/domain"
)

const (
	validCSV   = "../../../../testdata/drugs.csv"
	invalidCSV = "../../../../testdata/drugs_invalid.csv"
	drugsSuite = "../../../../testdata/suites/drugs.json"
	batchDir   = "../../../../testdata/batch"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	root := cli.NewRootCmdForTest()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func reportFiles(t *testing.T, dir, pattern string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "reports", pattern))
	require.NoError(t, err)
	return matches
}

func TestValidateCmd_Passes(t *testing.T) {
	project := t.TempDir()
	out, err := runCLI(t, "validate", validCSV, "--suite", drugsSuite, "--project", project)
	require.NoError(t, err)

	assert.Contains(t, out, "RESULT: DATA QUALITY PASSED")
	assert.Contains(t, out, "Total Expectations")
	assert.Contains(t, out, "Starting validation")
	assert.Len(t, reportFiles(t, project, "drugs_*.json"), 1)
}

func TestValidateCmd_FailsWithExitCodeOne(t *testing.T) {
	project := t.TempDir()
	out, err := runCLI(t, "validate", invalidCSV, "-s", drugsSuite, "--project", project)
	require.Error(t, err)

	assert.Equal(t, cli.ExitFailed, cli.ExitCode(err))
	assert.Contains(t, out, "RESULT: DATA QUALITY FAILED")
	assert.Contains(t, out, "Failed expectations")
	assert.Len(t, reportFiles(t, project, "drugs_invalid_*.json"), 1)
}

func TestValidateCmd_MissingDataset(t *testing.T) {
	project := t.TempDir()
	out, err := runCLI(t, "validate", "non_existent.csv", "-s", drugsSuite, "--project", project)
	require.Error(t, err)

	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
	assert.ErrorIs(t, err, domain.ErrDatasetNotFound)
	assert.Contains(t, out, "Input data file not found: non_existent.csv")
	assert.NoDirExists(t, filepath.Join(project, "reports"))
}

func TestValidateCmd_MissingSuite(t *testing.T) {
	out, err := runCLI(t, "validate", validCSV, "-s", "missing.json", "--project", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
	assert.Contains(t, out, "Suite file not found: missing.json")
}

func TestValidateCmd_MalformedSuite(t *testing.T) {
	out, err := runCLI(t, "validate", validCSV, "-s", "../../../../testdata/suites/malformed.json", "--project", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
	assert.Contains(t, out, "Suite loading error")
}

func TestValidateCmd_SuiteFlagRequired(t *testing.T) {
	_, err := runCLI(t, "validate", validCSV)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suite")
	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
}

func TestValidateCmd_OutPath(t *testing.T) {
	project := t.TempDir()
	outPath := filepath.Join(t.TempDir(), "custom", "report.json")
	out, err := runCLI(t, "validate", validCSV, "-s", drugsSuite, "-o", outPath, "--project", project)
	require.NoError(t, err)

	assert.FileExists(t, outPath)
	assert.Contains(t, out, outPath)
	assert.Empty(t, reportFiles(t, project, "*.json"))
}

func TestValidateCmd_HTMLNoOpen(t *testing.T) {
	project := t.TempDir()
	out, err := runCLI(t, "validate", validCSV, "-s", drugsSuite, "--html", "--no-open", "--project", project)
	require.NoError(t, err)

	docs := reportFiles(t, project, "drugs_*.html")
	require.Len(t, docs, 1)
	assert.Contains(t, out, docs[0])
}

func TestValidateCmd_JSON(t *testing.T) {
	out, err := runCLI(t, "validate", invalidCSV, "-s", drugsSuite, "--json", "--project", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, cli.ExitFailed, cli.ExitCode(err))

	var result domain.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Success)
	assert.Equal(t, result.Statistics.EvaluatedExpectations, len(result.Results))
}

func TestValidateCmd_UnknownResultFormat(t *testing.T) {
	_, err := runCLI(t, "validate", validCSV, "-s", drugsSuite, "--result-format", "VERBOSE", "--project", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
}

func TestValidateCmd_Batch(t *testing.T) {
	project := t.TempDir()
	out, err := runCLI(t, "validate", batchDir, "-s", drugsSuite, "--project", project)
	require.Error(t, err)

	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err), "a dataset that cannot be loaded dominates")
	assert.Contains(t, out, "Batch summary")
	assert.Contains(t, out, "1 of 3 datasets passed")
	assert.Contains(t, out, "drugs_a.csv")
	assert.Len(t, reportFiles(t, project, "*.json"), 2)
}

func TestValidateCmd_BatchJSON(t *testing.T) {
	out, err := runCLI(t, "validate", batchDir, "-s", drugsSuite, "--json", "--project", t.TempDir())
	require.Error(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)
	assert.NotEmpty(t, rows[0]["error"], "broken.csv sorts first")
	assert.Equal(t, true, rows[1]["success"])
	assert.Equal(t, false, rows[2]["success"])
}

func TestValidateCmd_BatchRejectsOut(t *testing.T) {
	_, err := runCLI(t, "validate", batchDir, "-s", drugsSuite, "-o", "x.json", "--project", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--out")
	assert.NoFileExists(t, "x.json")
}

func TestValidateCmd_EmptyBatchDir(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "validate", dir, "-s", drugsSuite, "--project", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
	assert.Contains(t, out, "No dataset files found")
}

func TestValidateCmd_ConfigFromProject(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, ".dqcheck.yaml"), []byte("reports_dir: out\n"), 0644))

	_, err := runCLI(t, "validate", validCSV, "-s", drugsSuite, "--project", project)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(project, "out", "drugs_*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRootCmd_PositionalDataset(t *testing.T) {
	project := t.TempDir()
	out, err := runCLI(t, validCSV, "--suite", drugsSuite, "--project", project)
	require.NoError(t, err)

	assert.Contains(t, out, "RESULT: DATA QUALITY PASSED")
	assert.Len(t, reportFiles(t, project, "drugs_*.json"), 1)
}

func TestRootCmd_PositionalDatasetFails(t *testing.T) {
	project := t.TempDir()
	out, err := runCLI(t, invalidCSV, "-s", drugsSuite, "--project", project)
	require.Error(t, err)
	assert.Equal(t, cli.ExitFailed, cli.ExitCode(err))
	assert.Contains(t, out, "RESULT: DATA QUALITY FAILED")
}

func TestRootCmd_PositionalDatasetNeedsSuite(t *testing.T) {
	_, err := runCLI(t, validCSV)
	require.Error(t, err)
	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
	assert.Contains(t, err.Error(), "suite")
}

func TestRootCmd_NoArgsShowsHelp(t *testing.T) {
	out, err := runCLI(t)
	require.NoError(t, err)
	assert.Contains(t, out, "validate")
}
