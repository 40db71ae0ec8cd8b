package mcp

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get_status",
			mcp.WithDescription("Get the panel phase, the last status message and any fetch error"),
		),
		s.handleGetStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_devices",
			mcp.WithDescription("List the devices as last fetched from the backend"),
		),
		s.handleListDevices,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_device",
			mcp.WithDescription("Get a single device from the current list"),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Device ID"),
			),
		),
		s.handleGetDevice,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("toggle_device",
			mcp.WithDescription("Flip a device's on/off status. The new status shows up in list_devices once the backend confirms it."),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Device ID"),
			),
		),
		s.handleToggleDevice,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("refresh",
			mcp.WithDescription("Re-fetch the device list from the backend"),
		),
		s.handleRefresh,
	)
}
