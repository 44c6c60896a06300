package runtime

import (
	"context"
	"encoding/json"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"terrainforge/pkg/logging"
)

// MCPServer builds a genuine mark3labs/mcp-go server.MCPServer exposing
// every registered tool, for embedding hosts that speak the real MCP
// protocol rather than this package's bespoke line-delimited envelope.
// The original Python source (tools/mcp/core/base_server.py) runs a real
// mcp.server.Server over stdio; this mirrors that choice on the Go side,
// grounded on the teacher's internal/aggregator/server.go construction.
func (r *Registry) MCPServer() *mcpserver.MCPServer {
	srv := mcpserver.NewMCPServer(
		r.name,
		r.version,
		mcpserver.WithToolCapabilities(true),
	)

	descs := r.Tools()
	tools := make([]mcpserver.ServerTool, 0, len(descs))
	for _, d := range descs {
		tools = append(tools, mcpserver.ServerTool{
			Tool:    toMCPTool(d),
			Handler: r.mcpHandlerFor(d.Name),
		})
	}
	srv.AddTools(tools...)
	return srv
}

// ServeMCPStdio runs the real-MCP-protocol surface over stdio until ctx is
// cancelled or in is closed.
func (r *Registry) ServeMCPStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := mcpserver.NewStdioServer(r.MCPServer())
	if err := stdio.Listen(ctx, in, out); err != nil {
		logging.Warn(subsystem, "mcp stdio surface ended: %v", err)
		return err
	}
	return nil
}

func (r *Registry) mcpHandlerFor(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		envelope := r.Dispatch(ctx, name, args)
		if !envelope.Success {
			msg := "tool failed"
			if envelope.Error != nil {
				msg = *envelope.Error
			}
			return mcp.NewToolResultError(msg), nil
		}
		data, err := json.Marshal(envelope.Result)
		if err != nil {
			return mcp.NewToolResultError("failed to encode result: " + err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func toMCPTool(d Descriptor) mcp.Tool {
	props := make(map[string]interface{}, len(d.Parameters.Properties))
	for name, p := range d.Parameters.Properties {
		entry := map[string]interface{}{"type": p.Type}
		if p.Description != "" {
			entry["description"] = p.Description
		}
		if p.Default != nil {
			entry["default"] = p.Default
		}
		if len(p.Enum) > 0 {
			entry["enum"] = p.Enum
		}
		props[name] = entry
	}

	return mcp.Tool{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   d.Parameters.Required,
		},
	}
}
