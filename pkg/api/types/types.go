package types

import (
	"time"

	"github.com/urmzd/switchboard/pkg/device"
)

// --- Request DTOs ---

// UpdateDeviceRequest is the request body for PATCH /device/:id
type UpdateDeviceRequest struct {
	Name   string `json:"name,omitempty"`
	Status bool   `json:"status"`
}

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Store     string    `json:"store"`
	Sockets   int       `json:"sockets"`
	Timestamp time.Time `json:"timestamp"`
}

// DeviceList wraps the devices array
type DeviceList struct {
	Devices []device.Device `json:"devices"`
}

// ListDevicesResponse is returned from GET /device/all
type ListDevicesResponse struct {
	Data DeviceList `json:"data"`
}

// DeviceEnvelope wraps a single device
type DeviceEnvelope struct {
	Device device.Device `json:"device"`
}

// DeviceResponse is returned from GET and PATCH /device/:id
type DeviceResponse struct {
	Data DeviceEnvelope `json:"data"`
}
