// Package mcp exposes congress operations as MCP tools over stdio.
//
// The MCP surface is a local, trusted one: tools run in the same process as
// the service and carry the caller's principal as an explicit argument
// instead of a bearer credential.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/statecraft/congress/internal/services/congress/service"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "Congress MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
}

// New creates a configured MCP server backed by the congress service.
func New(svc *service.Service) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerTools(mcpServer, svc)
	return &Server{mcpServer: mcpServer}
}

// Serve runs the MCP server over stdio until ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, &mcp.StdioTransport{})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
