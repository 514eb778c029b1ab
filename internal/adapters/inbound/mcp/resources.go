package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dqcheck/dqcheck/internal/adapters/outbound/config"
	"github.com/dqcheck/dqcheck/internal/adapters/outbound/history"
	"github.com/dqcheck/dqcheck/internal/adapters/outbound/report"
	"github.com/dqcheck/dqcheck/internal/domain/engine"
)

const reportsURIPrefix = "dqcheck://reports/"

// registerResources registers all dqcheck MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	s.AddResource(
		mcplib.NewResource(
			"dqcheck://expectations",
			"Expectation Types",
			mcplib.WithResourceDescription("Expectation types the validator supports"),
			mcplib.WithMIMEType("application/json"),
		),
		handleExpectationsResource(),
	)

	s.AddResource(
		mcplib.NewResource(
			"dqcheck://history",
			"Run History",
			mcplib.WithResourceDescription("Recorded validation runs for the project, oldest first"),
			mcplib.WithMIMEType("application/json"),
		),
		handleHistoryResource(projectPath),
	)

	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			reportsURIPrefix+"{name}",
			"Validation Report",
			mcplib.WithTemplateDescription("A JSON report from the project's reports directory"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleReportResource(projectPath),
	)
}

func handleExpectationsResource() server.ResourceHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		return jsonContents(request.Params.URI, engine.Types())
	}
}

func handleHistoryResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		entries, err := history.New().Load(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading history: %w", err)
		}
		return jsonContents(request.Params.URI, entries)
	}
}

func handleReportResource(projectPath string) server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		name := strings.TrimPrefix(request.Params.URI, reportsURIPrefix)
		if name == "" || name != filepath.Base(name) {
			return nil, fmt.Errorf("invalid report name %q", name)
		}

		cfg, err := config.New().Load(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		result, err := report.Read(filepath.Join(cfg.ReportsDirIn(projectPath), name))
		if err != nil {
			return nil, err
		}
		return jsonContents(request.Params.URI, result)
	}
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
