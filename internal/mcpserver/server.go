// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes SDN screening tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/algiz/internal/apperr"
	"github.com/starford/algiz/internal/sdnservice"
)

// Server wraps the MCP server with the SDN tools.
type Server struct {
	mcp *server.MCPServer
	svc *sdnservice.Service
}

// New creates a new MCP server with the screening tools registered.
func New(svc *sdnservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Algiz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_sdn",
		mcp.WithDescription("Search the Specially Designated Nationals (SDN) sanctions list "+
			"by name substring. Matching is case-insensitive; the query must be at least "+
			"2 characters long."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name fragment to search for")),
	), s.searchSDN)

	s.mcp.AddTool(mcp.NewTool("sdn_status",
		mcp.WithDescription("Report the freshness of the cached SDN snapshot and the health "+
			"of the upstream data source."),
	), s.sdnStatus)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchSDN(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Search(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidArgument) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("SDN data unavailable: %v", err)), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) sdnStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.svc.Health(ctx)
	out, _ := json.MarshalIndent(st, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
