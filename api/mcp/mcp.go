// Package mcp provides an MCP (Model Context Protocol) server for the
// catalog system.
package mcp

import (
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/catalog/pkg/store"
	"github.com/papercomputeco/catalog/pkg/utils"
)

type Config struct {
	// Storer reads the captured session snapshot
	Storer store.Store

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured zap logger
	Logger *zap.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the session tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	// Create the MCP server
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "catalog",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if c.Noop {
		// return the empty MCP server with no tools configured
		// if the noop flag is set (i.e., MCP capabilities are disabled)
		s.mcpServer = mcpServer
		return s, nil
	}

	if c.Storer == nil {
		return nil, errors.New("snapshot store is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	// Add tools
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        listSessionsToolName,
		Description: listSessionsDescription,
	}, s.handleListSessions)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        getSessionToolName,
		Description: getSessionDescription,
	}, s.handleGetSession)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        exportSessionToolName,
		Description: exportSessionDescription,
	}, s.handleExportSession)

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
