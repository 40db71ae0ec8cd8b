package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := StateToStatus(s.panel.State())
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleListDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state := s.panel.State()

	infos := make([]DeviceInfo, 0, len(state.Devices))
	for _, d := range state.Devices {
		infos = append(infos, DeviceToInfo(d, slices.Contains(state.InFlight, d.ID)))
	}

	out := ListDevicesOutput{
		Devices: infos,
		Count:   len(infos),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredInt(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, ok := s.panel.Find(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("device %d not found", id)), nil
	}

	state := s.panel.State()
	out := GetDeviceOutput{Device: DeviceToInfo(d, slices.Contains(state.InFlight, id))}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleToggleDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredInt(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, ok := s.panel.Find(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("device %d not found", id)), nil
	}

	s.panel.RequestToggle(d)

	desired := d
	desired.Status = !d.Status
	out := ToggleDeviceOutput{
		DeviceID: id,
		Desired:  desired.StatusLabel(),
		Message:  fmt.Sprintf("Toggle of %q requested; call get_status for the outcome", d.Name),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleRefresh(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.panel.Refresh()
	out := RefreshOutput{Message: "Refresh requested"}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

// --- helpers ---

// requiredInt reads a whole-number argument. JSON numbers arrive as float64.
func requiredInt(request mcp.CallToolRequest, key string) (int, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("required parameter %q is missing", key)
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("parameter %q must be a whole number", key)
		}
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("parameter %q must be a number", key)
	}
}

func formatJSON(v any) string {
	b, err := encodeJSON(v)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}

func encodeJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
