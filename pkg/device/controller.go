package device

import "context"

// Client defines the request/response side of the backend.
type Client interface {
	// FetchAll returns every device in server order. On failure the slice is
	// empty (never nil) and the error wraps ErrTransport,
	// ErrUnsuccessfulResponse or ErrMalformedResponse.
	FetchAll(ctx context.Context) ([]Device, error)

	// Toggle asks the backend to set a device's status. It returns at once;
	// the outcome is delivered on the returned channel, which is then closed.
	Toggle(ctx context.Context, id int, name string, desired bool) <-chan ToggleOutcome
}

// Channel defines the push side of the backend.
type Channel interface {
	// Connect opens the connection. It must be called at most once per session.
	Connect(ctx context.Context) error

	// Disconnect tears the connection down. Safe to call more than once.
	Disconnect() error

	// OnUpdate sets the handler invoked on every change notification,
	// replacing any previous handler.
	OnUpdate(fn func())

	// EmitUpdate sends a fire-and-forget notification for a local change.
	EmitUpdate(name string, status bool)
}
