package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/urmzd/switchboard/pkg/device"
	"github.com/urmzd/switchboard/pkg/panel"
)

// Panel is the part of the panel controller the tools drive
type Panel interface {
	State() panel.State
	Find(id int) (device.Device, bool)
	RequestToggle(d device.Device)
	Refresh()
}

// Server wraps the MCP server around a running device panel
type Server struct {
	mcpServer *server.MCPServer
	panel     Panel
}

// NewServer creates a new MCP server for the panel
func NewServer(p Panel) *Server {
	s := &Server{panel: p}

	s.mcpServer = server.NewMCPServer(
		"switchboard",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
