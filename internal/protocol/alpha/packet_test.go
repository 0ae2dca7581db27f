package alpha

import (
	"bytes"
	"errors"
	"testing"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    uint16
	}{
		{name: "empty", payload: nil, want: 0x0005},
		{name: "two letters", payload: []byte("AA"), want: 0x0087},
		{name: "one high byte", payload: []byte{0xFF}, want: 0x0104},
		{name: "wraps at 65536", payload: bytes.Repeat([]byte{0xFF}, 4096), want: 0xF005},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.payload); got != tt.want {
				t.Errorf("Checksum() = %04X, want %04X", got, tt.want)
			}
		})
	}
}

func TestChecksumMatchesByteSum(t *testing.T) {
	for _, size := range []int{0, 1, 17, 255, 1024, 4096} {
		payload := make([]byte, size)
		sum := 5
		for i := range payload {
			payload[i] = byte(i * 7)
			sum += int(payload[i])
		}
		if got := Checksum(payload); int(got) != sum%65536 {
			t.Errorf("size %d: Checksum() = %d, want %d", size, got, sum%65536)
		}
	}
}

func TestFrame(t *testing.T) {
	got := Frame([]byte("AA"))
	want := []byte("\x00\x00\x00\x00\x00\x01Z00\x02AA\x030087\x04")
	if !bytes.Equal(got, want) {
		t.Errorf("Frame() = %q, want %q", got, want)
	}
}

func TestFrameTo(t *testing.T) {
	got := FrameTo([]byte("Z"), 'A', "05")
	want := []byte("\x00\x00\x00\x00\x00\x01A05\x02Z\x03005F\x04")
	if !bytes.Equal(got, want) {
		t.Errorf("FrameTo() = %q, want %q", got, want)
	}
}

func TestFrameColoredText(t *testing.T) {
	payload := WriteTextFile("A", NewEncoder().Encode("<C:RED>Hi</C:RED>"))
	got := Frame(payload)
	want := []byte("\x00\x00\x00\x00\x00\x01Z00\x02AA\x1c1Hi\x1cC\x0301E4\x04")
	if !bytes.Equal(got, want) {
		t.Errorf("Frame() = %q, want %q", got, want)
	}
}

func TestFooterShape(t *testing.T) {
	for _, payload := range [][]byte{nil, []byte("E,"), bytes.Repeat([]byte{0xAB}, 300)} {
		f := Footer(payload)
		if len(f) != 6 || f[0] != ETX || f[5] != EOT {
			t.Errorf("Footer(%d bytes) = %q", len(payload), f)
		}
		if !bytes.Equal(f[1:5], bytes.ToUpper(f[1:5])) {
			t.Errorf("Footer checksum not uppercase: %q", f[1:5])
		}
	}
}

func TestParsePacket(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    *Packet
		wantErr error
	}{
		{
			name: "round trip",
			data: Frame([]byte("E,")),
			want: &Packet{Type: 'Z', Address: "00", Payload: []byte("E,")},
		},
		{
			name: "reply without checksum",
			data: []byte("\x00\x00\x01000\x02E#7FFF\x03\x04"),
			want: &Packet{Type: '0', Address: "00", Payload: []byte("E#7FFF")},
		},
		{
			name: "trailing bytes ignored",
			data: append(FrameTo([]byte("F*"), 'A', "01"), 0x00, 0x00),
			want: &Packet{Type: 'A', Address: "01", Payload: []byte("F*")},
		},
		{
			name:    "bad checksum",
			data:    []byte("\x01Z00\x02AA\x030000\x04"),
			wantErr: ErrChecksumMismatch,
		},
		{name: "missing SOH", data: []byte("Z00\x02AA\x030087\x04"), wantErr: ErrInvalidPacket},
		{name: "missing STX", data: []byte("\x01Z00AA\x030087\x04"), wantErr: ErrInvalidPacket},
		{name: "missing ETX", data: []byte("\x01Z00\x02AA0087\x04"), wantErr: ErrInvalidPacket},
		{name: "missing EOT", data: []byte("\x01Z00\x02AA\x030087"), wantErr: ErrInvalidPacket},
		{name: "short checksum", data: []byte("\x01Z00\x02AA\x0387\x04"), wantErr: ErrInvalidPacket},
		{name: "non-hex checksum", data: []byte("\x01Z00\x02AA\x03ZZZZ\x04"), wantErr: ErrInvalidPacket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePacket(tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParsePacket() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePacket() error = %v", err)
			}
			if got.Type != tt.want.Type || got.Address != tt.want.Address || !bytes.Equal(got.Payload, tt.want.Payload) {
				t.Errorf("ParsePacket() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPacketBytes(t *testing.T) {
	p := &Packet{Type: SignTypeAll, Address: AddressBroadcast, Payload: SoftReset()}
	if !bytes.Equal(p.Bytes(), Frame(SoftReset())) {
		t.Errorf("Bytes() = %q", p.Bytes())
	}
	if p.Command().Selector() != SelectSoftReset {
		t.Errorf("Command().Selector() = %#x", p.Command().Selector())
	}
}
