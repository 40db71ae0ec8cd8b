package device

// Device is a remotely managed on/off entity as reported by the backend.
// Values are never mutated after decoding; a fresh fetch replaces them.
type Device struct {
	ID          int     `json:"id"`          // Backend-assigned identifier
	Name        string  `json:"name"`        // Display name, also used to correlate push notifications
	Description string  `json:"description"` // Free-form description
	Status      bool    `json:"status"`      // true = ON
	Type        string  `json:"type"`        // Opaque category (light, plug, sensor, ...)
	Value       float64 `json:"value"`       // Latest numeric reading
}

// StatusLabel returns "ON" or "OFF".
func (d Device) StatusLabel() string {
	if d.Status {
		return "ON"
	}
	return "OFF"
}

// ToggleRequest is the PATCH /device/{id} request body.
type ToggleRequest struct {
	Name   string `json:"name"`
	Status bool   `json:"status"`
}

// Event is a push channel frame.
type Event struct {
	Event  string `json:"event"`            // Event type (device_changed, set_device)
	Name   string `json:"name,omitempty"`   // Device name for set_device
	Status *bool  `json:"status,omitempty"` // Desired status for set_device
}

// Push event types
const (
	EventDeviceChanged = "device_changed"
	EventSetDevice     = "set_device"
)

// NewSetDeviceEvent builds the outbound notification for a local toggle.
func NewSetDeviceEvent(name string, status bool) Event {
	return Event{Event: EventSetDevice, Name: name, Status: &status}
}
