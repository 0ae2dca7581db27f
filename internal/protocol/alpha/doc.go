// Package alpha encodes messages and commands for Alpha-protocol LED signs.
//
// The package is pure: it performs no I/O. It turns tag-annotated text and
// typed command parameters into the exact byte sequences the sign firmware
// expects, and wraps them in checksummed packets ready for a transport.
//
// # Layers
//
//	text ──► EscapeText ──► Encoder.Encode ──► WriteTextFile ──► Frame ──► transport
//	params ──────────────────► SetTime, SetDate, GenerateTone, ... ──► Frame
//
// # Tags
//
// Messages carry inline markup such as <C:RED>, <SPEED:3>, <SCROLL> or
// <BEEP:2>. Encoder.Encode replaces every recognised tag with its control
// bytes in a single left-to-right pass. Unknown tags are copied through
// unchanged. Effect tags embed the encoder's current line position, which
// <LINE:...> tags and Encoder.SetLine change.
//
// Example:
//
//	enc := alpha.NewEncoder()
//	payload := alpha.WriteTextFile("A", enc.EncodeMessage("<C:RED>Hi</C:RED>"))
//	packet := alpha.Frame(payload)
//
// # Packets
//
// Every payload travels inside a packet:
//
//	NUL×5  SOH  type  addr(2)  STX  payload  ETX  checksum(4 hex)  EOT
//
// The checksum is the 16-bit sum of STX, ETX and every payload byte,
// rendered as four uppercase hex digits.
package alpha
