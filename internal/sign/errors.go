package sign

import "errors"

// Domain errors for the sign package.
var (
	// ErrEmptyMessage is returned when a message has no text.
	ErrEmptyMessage = errors.New("sign: message text is required")

	// ErrSendFailed is returned when a packet could not be written.
	ErrSendFailed = errors.New("sign: send failed")

	// ErrInvalidParameter is returned when a request parameter cannot be
	// parsed.
	ErrInvalidParameter = errors.New("sign: invalid parameter")

	// ErrClosed is returned by commands issued after Close.
	ErrClosed = errors.New("sign: client closed")
)

// Read errors.
var (
	// ErrNoReply is returned by Query when the sign sends nothing back
	// before the read timeout.
	ErrNoReply = errors.New("sign: no reply")

	// ErrBadReply is returned by Query when the bytes that arrived do not
	// form a packet.
	ErrBadReply = errors.New("sign: malformed reply")
)
