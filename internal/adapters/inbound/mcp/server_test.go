package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dqcheck/dqcheck/internal/adapters/outbound/config"
	"github.com/dqcheck/dqcheck/internal/adapters/outbound/dataset"
	"github.com/dqcheck/dqcheck/internal/adapters/outbound/docs"
	"github.com/dqcheck/dqcheck/internal/adapters/outbound/history"
	"github.com/dqcheck/dqcheck/internal/adapters/outbound/report"
	"github.com/dqcheck/dqcheck/internal/adapters/outbound/suite"
	"github.com/dqcheck/dqcheck/internal/application"
	"github.com/dqcheck/dqcheck/internal/domain/engine"
)

func newService() *application.ValidateService {
	logger, _ := test.NewNullLogger()
	return application.NewValidateService(application.ValidatePorts{
		Datasets: dataset.New(),
		Suites:   suite.New(),
		Reports:  report.NewJSONWriter(),
		Docs:     docs.NewHTMLBuilder(),
		Config:   config.New(),
		History:  history.New(),
	}, logger)
}

// newProject copies the drug fixtures into a fresh project dir.
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, src := range []string{"drugs.csv", "drugs_invalid.csv", "suites/drugs.json"} {
		data, err := os.ReadFile(filepath.Join("../../../../testdata", src))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, filepath.Base(src)), data, 0644))
	}
	return dir
}

func callTool(t *testing.T, h func(context.Context, mcplib.CallToolRequest) (*mcplib.CallToolResult, error), args map[string]any) *mcplib.CallToolResult {
	t.Helper()
	req := mcplib.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestNewDQCheckMCPServer(t *testing.T) {
	s := NewDQCheckMCPServer(".", newService(), "test")
	require.NotNil(t, s)
}

func TestMCPServerHasTools(t *testing.T) {
	s := NewDQCheckMCPServer(".", newService(), "test")

	tools := s.ListTools()
	require.NotNil(t, tools)

	expectedTools := []string{
		"dqcheck_validate",
		"dqcheck_list_expectations",
	}
	for _, name := range expectedTools {
		_, exists := tools[name]
		assert.True(t, exists, "tool %q should be registered", name)
	}
	assert.Len(t, tools, len(expectedTools))
}

func TestValidateTool_Passes(t *testing.T) {
	project := newProject(t)
	res := callTool(t, handleValidate(project, newService()), map[string]any{
		"data":  "drugs.csv",
		"suite": "drugs.json",
		"html":  true,
	})
	require.False(t, res.IsError, text(t, res))

	var got validateResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.True(t, got.Success)
	assert.Equal(t, "drugs_suite", got.Suite)
	assert.Equal(t, 6, got.Statistics.EvaluatedExpectations)
	assert.FileExists(t, got.ReportPath)
	assert.FileExists(t, got.DocsPath)
	assert.Empty(t, got.Failed)
}

func TestValidateTool_FailureListsFailedExpectations(t *testing.T) {
	project := newProject(t)
	res := callTool(t, handleValidate(project, newService()), map[string]any{
		"data":  "drugs_invalid.csv",
		"suite": "drugs.json",
	})
	require.False(t, res.IsError)

	var got validateResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.False(t, got.Success)
	assert.NotEmpty(t, got.Failed)
	assert.Len(t, got.Failed, got.Statistics.UnsuccessfulExpectations)
}

func TestValidateTool_Errors(t *testing.T) {
	project := newProject(t)
	h := handleValidate(project, newService())

	res := callTool(t, h, map[string]any{"suite": "drugs.json"})
	assert.True(t, res.IsError)

	res = callTool(t, h, map[string]any{"data": "missing.csv", "suite": "drugs.json"})
	assert.True(t, res.IsError)
	assert.Equal(t, "Input data file not found: missing.csv", text(t, res))

	res = callTool(t, h, map[string]any{"data": "drugs.csv", "suite": "nope.json"})
	assert.True(t, res.IsError)
	assert.Equal(t, "Suite file not found: nope.json", text(t, res))
}

func TestListExpectationsTool(t *testing.T) {
	res := callTool(t, handleListExpectations(), nil)

	var got []engine.TypeInfo
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.Len(t, got, len(engine.Types()))
}

func readResource(t *testing.T, h func(context.Context, mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error), uri string) string {
	t.Helper()
	req := mcplib.ReadResourceRequest{}
	req.Params.URI = uri
	contents, err := h(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcplib.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, uri, tc.URI)
	return tc.Text
}

func TestHistoryResource(t *testing.T) {
	project := newProject(t)
	callTool(t, handleValidate(project, newService()), map[string]any{"data": "drugs.csv", "suite": "drugs.json"})

	raw := readResource(t, handleHistoryResource(project), "dqcheck://history")
	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, true, entries[0]["success"])
}

func TestExpectationsResource(t *testing.T) {
	raw := readResource(t, handleExpectationsResource(), "dqcheck://expectations")
	assert.Contains(t, raw, "expect_column_values_to_not_be_null")
}

func TestReportResource(t *testing.T) {
	project := newProject(t)
	res := callTool(t, handleValidate(project, newService()), map[string]any{"data": "drugs.csv", "suite": "drugs.json"})
	var got validateResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))

	uri := reportsURIPrefix + filepath.Base(got.ReportPath)
	raw := readResource(t, handleReportResource(project), uri)
	assert.Contains(t, raw, `"suite_name": "drugs_suite"`)

	req := mcplib.ReadResourceRequest{}
	req.Params.URI = reportsURIPrefix + "../secret.json"
	_, err := handleReportResource(project)(context.Background(), req)
	assert.Error(t, err)
}
