package alpha

import (
	"bytes"
	"fmt"
	"strconv"
)

// checksumModulus bounds the running payload sum to 16 bits.
const checksumModulus = 65536

// Checksum returns the packet checksum for payload: the sum of STX, ETX
// and every payload byte, modulo 65536.
func Checksum(payload []byte) uint16 {
	sum := int(STX) + int(ETX)
	for _, b := range payload {
		sum += int(b)
	}
	return uint16(sum % checksumModulus)
}

// Header returns the packet preamble up to and including STX.
func Header(signType byte, address string) []byte {
	h := make([]byte, 0, preambleLen+4+len(address))
	for i := 0; i < preambleLen; i++ {
		h = append(h, NUL)
	}
	h = append(h, SOH, signType)
	h = append(h, address...)
	return append(h, STX)
}

// Footer returns ETX, the four-digit uppercase hex checksum and EOT.
func Footer(payload []byte) []byte {
	return append(fmt.Appendf([]byte{ETX}, "%04X", Checksum(payload)), EOT)
}

// Frame wraps payload in a packet addressed to every sign.
func Frame(payload []byte) []byte {
	return FrameTo(payload, SignTypeAll, AddressBroadcast)
}

// FrameTo wraps payload in a packet for a specific sign type and address.
//
// Parameters:
//   - payload: command code and data, without STX or ETX
//   - signType: one type code; SignTypeAll reaches every sign
//   - address: two characters; AddressBroadcast reaches every address
//
// Returns the preamble, header, payload and checksum footer ending in EOT.
func FrameTo(payload []byte, signType byte, address string) []byte {
	header := Header(signType, address)
	out := make([]byte, 0, len(header)+len(payload)+6)
	out = append(out, header...)
	out = append(out, payload...)
	return append(out, Footer(payload)...)
}

// Packet is a decoded packet, typically a sign's reply to a read command.
type Packet struct {
	Type    byte
	Address string
	Payload []byte
}

// Bytes frames the packet.
func (p *Packet) Bytes() []byte {
	return FrameTo(p.Payload, p.Type, p.Address)
}

// Command returns the payload as a Command.
func (p *Packet) Command() Command {
	return Command(p.Payload)
}

// ParsePacket decodes one packet from data.
//
// Leading NUL bytes are skipped. The checksum is verified when present;
// signs may omit it in replies, in which case ETX is followed directly by
// EOT. Bytes after EOT are ignored.
func ParsePacket(data []byte) (*Packet, error) {
	data = bytes.TrimLeft(data, "\x00")

	// SOH type addr(2) STX ... ETX ... EOT
	if len(data) < 7 || data[0] != SOH {
		return nil, fmt.Errorf("%w: missing SOH", ErrInvalidPacket)
	}
	if data[4] != STX {
		return nil, fmt.Errorf("%w: missing STX", ErrInvalidPacket)
	}

	p := &Packet{Type: data[1], Address: string(data[2:4])}

	body := data[5:]
	etx := bytes.IndexByte(body, ETX)
	if etx < 0 {
		return nil, fmt.Errorf("%w: missing ETX", ErrInvalidPacket)
	}
	p.Payload = append([]byte(nil), body[:etx]...)

	trailer := body[etx+1:]
	eot := bytes.IndexByte(trailer, EOT)
	if eot < 0 {
		return nil, fmt.Errorf("%w: missing EOT", ErrInvalidPacket)
	}

	switch eot {
	case 0:
		return p, nil
	case 4:
		got, err := strconv.ParseUint(string(trailer[:4]), 16, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: checksum %q: %w", ErrInvalidPacket, trailer[:4], err)
		}
		if want := Checksum(p.Payload); uint16(got) != want {
			return nil, fmt.Errorf("%w: got %04X, want %04X", ErrChecksumMismatch, got, want)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: checksum field has %d bytes", ErrInvalidPacket, eot)
	}
}
