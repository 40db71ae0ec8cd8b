package device

import "errors"

var (
	// ErrTransport indicates a connection or I/O failure talking to the backend
	ErrTransport = errors.New("transport failure")

	// ErrUnsuccessfulResponse indicates the backend answered with a non-2xx status
	ErrUnsuccessfulResponse = errors.New("unsuccessful response")

	// ErrMalformedResponse indicates a response body did not have the expected shape
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNotConnected indicates the push channel is not connected
	ErrNotConnected = errors.New("channel not connected")

	// ErrAlreadyConnected indicates Connect was called on a live channel
	ErrAlreadyConnected = errors.New("channel already connected")

	// ErrNotFound indicates a device was not found
	ErrNotFound = errors.New("device not found")

	// ErrValidation indicates a payload failed schema validation
	ErrValidation = errors.New("validation error")
)
