// Package mcpserver wires the run_shortcut tool into an MCP server and its
// two transports: stdio and streamable HTTP.
package mcpserver

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/freema/shortcutd/internal/tool"
)

const serverName = "shortcutd"

const instructions = "Execute Siri Shortcuts on macOS hosts using the `shortcuts` command line tool. " +
	"Provide the shortcut display name and optional text input."

// New builds the MCP server and registers the run_shortcut tool.
func New(h *tool.Handler, version string) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: serverName, Version: version},
		&mcp.ServerOptions{Instructions: instructions},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name: tool.Name,
		Description: "Run a Siri Shortcut that exists on the host macOS machine using " +
			"the `shortcuts run` command.",
		InputSchema:  runShortcutInputSchema(),
		OutputSchema: runShortcutOutputSchema(),
	}, runShortcutHandler(h))

	return server
}

// ServeStdio runs the server over the process's stdin/stdout until the
// context is cancelled or the client disconnects.
func ServeStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler returns the streamable HTTP handler for the server.
// jsonResponse switches discrete JSON responses on instead of SSE streams;
// stateless disables session reuse.
func HTTPHandler(server *mcp.Server, jsonResponse, stateless bool) http.Handler {
	return mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return server },
		&mcp.StreamableHTTPOptions{
			JSONResponse: jsonResponse,
			Stateless:    stateless,
		},
	)
}

func runShortcutHandler(h *tool.Handler) func(context.Context, *mcp.CallToolRequest, tool.Input) (*mcp.CallToolResult, tool.Output, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in tool.Input) (*mcp.CallToolResult, tool.Output, error) {
		out, err := h.Invoke(ctx, in)
		if err != nil {
			// Reported to the caller as a tool-level error by the SDK.
			return nil, tool.Output{}, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: out.Summary}},
		}, out, nil
	}
}

func runShortcutInputSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"required":             []string{"shortcutName"},
		"additionalProperties": false,
		"properties": map[string]any{
			"shortcutName": map[string]any{
				"type":        "string",
				"description": "Display name of the shortcut to execute.",
				"minLength":   1,
			},
			"textInput": map[string]any{
				"type":        "string",
				"description": "Optional text piped to the shortcut's standard input.",
			},
			"timeoutSeconds": map[string]any{
				"type":             "number",
				"description":      "Maximum seconds to wait for the shortcut before aborting.",
				"exclusiveMinimum": 0,
			},
		},
	}
}

func runShortcutOutputSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"required":             []string{"summary", "status", "exitCode", "standardOutput", "standardError", "durationMillis"},
		"additionalProperties": false,
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "Short human-readable account of the run.",
			},
			"status": map[string]any{
				"type":        "string",
				"enum":        []string{"Succeeded", "Failed", "TimedOut", "Cancelled"},
				"description": "Terminal state the invocation reached.",
			},
			"command": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Command that was executed.",
			},
			"exitCode": map[string]any{
				"type":        []string{"integer", "null"},
				"description": "Process exit code when the shortcut ran to completion.",
			},
			"standardOutput": map[string]any{
				"type":        "string",
				"description": "Captured standard output, possibly truncated.",
			},
			"standardError": map[string]any{
				"type":        "string",
				"description": "Captured standard error, possibly truncated.",
			},
			"durationMillis": map[string]any{
				"type":        "integer",
				"description": "Observed wall-clock run time in milliseconds.",
			},
		},
	}
}
