package device

import "fmt"

// ToggleOutcome is the result of a toggle request.
type ToggleOutcome struct {
	ID         int
	StatusCode int   // HTTP status; zero when Err is set
	Err        error // Transport failure, if any
}

// OK reports whether the backend accepted the change with a 2xx status.
func (o ToggleOutcome) OK() bool {
	return o.Err == nil && o.StatusCode >= 200 && o.StatusCode < 300
}

// String returns the user-visible outcome message.
func (o ToggleOutcome) String() string {
	if o.Err != nil {
		return "Failed: " + o.Err.Error()
	}
	return fmt.Sprintf("Device %d updated: %d", o.ID, o.StatusCode)
}
