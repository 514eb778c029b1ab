package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dqcheck/dqcheck/internal/application"
	"github.com/dqcheck/dqcheck/internal/domain"
	"github.com/dqcheck/dqcheck/internal/domain/engine"
)

// registerTools registers all dqcheck MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string, svc *application.ValidateService) {
	s.AddTool(
		mcplib.NewTool("dqcheck_validate",
			mcplib.WithDescription("Validate a CSV or xlsx dataset against an expectations suite and write a JSON report"),
			mcplib.WithString("data",
				mcplib.Required(),
				mcplib.Description("Path to the dataset, relative to the project"),
			),
			mcplib.WithString("suite",
				mcplib.Required(),
				mcplib.Description("Path to the JSON expectations suite, relative to the project"),
			),
			mcplib.WithString("result_format",
				mcplib.Description("BOOLEAN_ONLY, BASIC, SUMMARY or COMPLETE"),
			),
			mcplib.WithBoolean("html",
				mcplib.Description("Also build the HTML data docs (never opened from the server)"),
			),
		),
		handleValidate(projectPath, svc),
	)

	s.AddTool(
		mcplib.NewTool("dqcheck_list_expectations",
			mcplib.WithDescription("Returns the supported expectation types with their kind and description"),
		),
		handleListExpectations(),
	)
}

// validateResponse is what dqcheck_validate returns.
type validateResponse struct {
	Success    bool                       `json:"success"`
	Suite      string                     `json:"suite_name"`
	Statistics domain.Statistics          `json:"statistics"`
	ReportPath string                     `json:"report_path"`
	DocsPath   string                     `json:"docs_path,omitempty"`
	Failed     []domain.ExpectationResult `json:"failed,omitempty"`
}

func handleValidate(projectPath string, svc *application.ValidateService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		data, err := request.RequireString("data")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		suitePath, err := request.RequireString("suite")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		args := request.GetArguments()
		rf, _ := args["result_format"].(string)
		html, _ := args["html"].(bool)

		outcome, err := svc.Validate(ctx, application.RunRequest{
			DatasetPath:  resolve(projectPath, data),
			SuitePath:    resolve(projectPath, suitePath),
			HTML:         html,
			NoOpen:       true,
			ResultFormat: rf,
			ProjectPath:  projectPath,
		})
		if err != nil && outcome == nil {
			switch {
			case errors.Is(err, domain.ErrDatasetNotFound):
				return errorResult("Input data file not found: " + data), nil
			case errors.Is(err, domain.ErrSuiteNotFound):
				return errorResult("Suite file not found: " + suitePath), nil
			}
			return errorResult(fmt.Sprintf("validate failed: %v", err)), nil
		}

		return jsonResult(validateResponse{
			Success:    outcome.Result.Success,
			Suite:      outcome.Result.SuiteName,
			Statistics: outcome.Result.Statistics,
			ReportPath: outcome.ReportPath,
			DocsPath:   outcome.DocsPath,
			Failed:     outcome.Result.Failed(),
		})
	}
}

func handleListExpectations() server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return jsonResult(engine.Types())
	}
}

func resolve(projectPath, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(projectPath, p)
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
