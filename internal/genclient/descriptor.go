// Package genclient implements the generate_client MCP tool.
package genclient

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	ToolName        = "generate_client"
	ToolDescription = "Generate TypeScript API client from OpenAPI specification"
)

// InputSchema is both advertised in tools/list and enforced before the
// handler runs.
var InputSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"input": {
			"type": "string",
			"description": "URL or file path to OpenAPI specification"
		},
		"output": {
			"type": "string",
			"description": "Output directory for generated client"
		},
		"httpClient": {
			"type": "string",
			"enum": ["fetch", "axios"],
			"description": "HTTP client to use (fetch or axios)"
		}
	},
	"required": ["input", "output", "httpClient"],
	"additionalProperties": false
}`)

// Tool returns the descriptor registered with the MCP server.
func Tool() mcp.Tool {
	return mcp.NewToolWithRawSchema(ToolName, ToolDescription, InputSchema)
}
