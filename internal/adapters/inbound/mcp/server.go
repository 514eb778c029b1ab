package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/dqcheck/dqcheck/internal/application"
)

// NewDQCheckMCPServer creates a new MCP server with all dqcheck tools and
// resources registered. Relative dataset and suite paths resolve against
// projectPath, which also holds .dqcheck.yaml and the run history.
func NewDQCheckMCPServer(projectPath string, svc *application.ValidateService, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"dqcheck",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath, svc)
	registerResources(s, projectPath)

	return s
}
