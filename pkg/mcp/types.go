package mcp

import (
	"github.com/urmzd/switchboard/pkg/device"
	"github.com/urmzd/switchboard/pkg/panel"
)

// --- Status Tool ---

// GetStatusOutput is the output for the get_status tool
type GetStatusOutput struct {
	Phase         string `json:"phase" jsonschema:"description=Panel phase (loading/ready/toggling)"`
	StatusMessage string `json:"status_message" jsonschema:"description=Outcome of the last toggle"`
	FetchError    string `json:"fetch_error,omitempty" jsonschema:"description=Last fetch failure"`
	InFlight      []int  `json:"in_flight" jsonschema:"description=Device IDs with a toggle in flight"`
	DeviceCount   int    `json:"device_count" jsonschema:"description=Number of devices in the list"`
}

// --- List Devices Tool ---

// ListDevicesOutput is the output for the list_devices tool
type ListDevicesOutput struct {
	Devices []DeviceInfo `json:"devices" jsonschema:"description=Devices in backend order"`
	Count   int          `json:"count" jsonschema:"description=Total number of devices"`
}

// DeviceInfo represents a device in tool outputs
type DeviceInfo struct {
	ID          int     `json:"id" jsonschema:"description=Backend device identifier"`
	Name        string  `json:"name" jsonschema:"description=Display name"`
	Description string  `json:"description" jsonschema:"description=Free-form description"`
	Type        string  `json:"type" jsonschema:"description=Device category label"`
	Value       float64 `json:"value" jsonschema:"description=Numeric reading"`
	Status      string  `json:"status" jsonschema:"description=ON or OFF"`
	Toggling    bool    `json:"toggling,omitempty" jsonschema:"description=A toggle is in flight"`
}

// --- Get Device Tool ---

// GetDeviceOutput is the output for the get_device tool
type GetDeviceOutput struct {
	Device DeviceInfo `json:"device" jsonschema:"description=Device information"`
}

// --- Toggle Device Tool ---

// ToggleDeviceOutput is the output for the toggle_device tool
type ToggleDeviceOutput struct {
	DeviceID int    `json:"device_id" jsonschema:"description=Device identifier"`
	Desired  string `json:"desired" jsonschema:"description=Requested status (ON or OFF)"`
	Message  string `json:"message" jsonschema:"description=Status message"`
}

// --- Refresh Tool ---

// RefreshOutput is the output for the refresh tool
type RefreshOutput struct {
	Message string `json:"message" jsonschema:"description=Status message"`
}

// --- Helper conversions ---

// DeviceToInfo converts a device.Device to DeviceInfo
func DeviceToInfo(d device.Device, toggling bool) DeviceInfo {
	return DeviceInfo{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Type:        d.Type,
		Value:       d.Value,
		Status:      d.StatusLabel(),
		Toggling:    toggling,
	}
}

// StateToStatus converts a panel snapshot to the get_status output
func StateToStatus(s panel.State) GetStatusOutput {
	out := GetStatusOutput{
		Phase:         s.Phase.String(),
		StatusMessage: s.StatusMessage,
		InFlight:      s.InFlight,
		DeviceCount:   len(s.Devices),
	}
	if out.InFlight == nil {
		out.InFlight = []int{}
	}
	if s.FetchErr != nil {
		out.FetchError = s.FetchErr.Error()
	}
	return out
}
