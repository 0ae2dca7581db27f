package transport

import "errors"

// Domain errors for the transport package.
var (
	// ErrConnectionFailed is returned when a transport cannot be opened.
	ErrConnectionFailed = errors.New("transport: connection failed")

	// ErrNotOpen is returned by Write or Read before Open or after Close.
	ErrNotOpen = errors.New("transport: not open")

	// ErrWriteFailed is returned when bytes cannot be written.
	ErrWriteFailed = errors.New("transport: write failed")

	// ErrReadFailed is returned when the link fails while reading. A read
	// timeout is not an error.
	ErrReadFailed = errors.New("transport: read failed")

	// ErrInvalidSize is returned by Read for a negative size.
	ErrInvalidSize = errors.New("transport: invalid read size")

	// ErrInvalidTarget is returned when a target string cannot be parsed.
	ErrInvalidTarget = errors.New("transport: invalid target")

	// ErrSerialUnavailable is returned when a serial target is requested
	// but the binary was built without serial support.
	ErrSerialUnavailable = errors.New("transport: serial support unavailable")
)
