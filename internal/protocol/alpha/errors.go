package alpha

import "errors"

// Domain errors for the alpha package.
var (
	// ErrInvalidPacket is returned when bytes read from a sign do not form
	// a complete packet.
	ErrInvalidPacket = errors.New("alpha: invalid packet")

	// ErrChecksumMismatch is returned when a packet's checksum field does
	// not match its payload.
	ErrChecksumMismatch = errors.New("alpha: checksum mismatch")
)
