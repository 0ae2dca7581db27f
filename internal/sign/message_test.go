package sign

import (
	"bytes"
	"testing"
	"time"

	"github.com/nerrad567/alphasign-core/internal/protocol/alpha"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name     string
		msg      Message
		wantText string
		wantLine alpha.Line
	}{
		{
			name:     "defaults",
			msg:      NewMessage("Hello"),
			wantText: "<SCROLL><F:SANS7><SPEED:3><C:AUTO>Hello",
			wantLine: alpha.LineMiddle,
		},
		{
			name: "all options",
			msg: Message{
				Text: "Sale", Color: "mix", Effect: "roll_up", Speed: "5",
				Font: "serif16", Line: "top", Beep: "2",
			},
			wantText: "<ROLL:UP><F:SERIF16><SPEED:5><C:COLORMIX>Sale<BEEP:2>",
			wantLine: alpha.LineTop,
		},
		{
			name:     "unknown values ignored",
			msg:      Message{Text: "x", Color: "purple", Effect: "explode", Speed: "9", Font: "comic", Line: "side", Beep: "-1"},
			wantText: "x",
			wantLine: alpha.LineMiddle,
		},
		{
			name:     "non numeric beep ignored",
			msg:      Message{Text: "x", Beep: "lots"},
			wantText: "x",
			wantLine: alpha.LineMiddle,
		},
		{
			name:     "bottom line",
			msg:      Message{Text: "x", Effect: "hold", Line: "BOTTOM"},
			wantText: "<HOLD>x",
			wantLine: alpha.LineBottom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotText, gotLine := Compose(tt.msg)
			if gotText != tt.wantText {
				t.Errorf("Compose() text = %q, want %q", gotText, tt.wantText)
			}
			if gotLine != tt.wantLine {
				t.Errorf("Compose() line = %q, want %q", gotLine, tt.wantLine)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	m := NewMessage("Hi")
	m.Line = "top"
	m.Beep = "1"

	got := Encode(m)

	var want []byte
	want = append(want, 'A', 'A')
	want = append(want, alpha.ESC, '"', 'a')
	want = append(want, 0x1A, '3')
	want = append(want, 0x17)
	want = append(want, 0x1C, 'C')
	want = append(want, "Hi"...)
	want = append(want, alpha.Beep(1)...)

	if !bytes.Equal(got, want) {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncodeLabel(t *testing.T) {
	m := Message{Text: "x", Label: "B"}
	if got := Encode(m); string(got) != "ABx" {
		t.Errorf("Encode() = %q, want %q", got, "ABx")
	}

	m.Label = ""
	if got := Encode(m); string(got) != "AAx" {
		t.Errorf("Encode() with empty label = %q, want %q", got, "AAx")
	}
}

func TestNameLists(t *testing.T) {
	if got := len(Colors()); got != len(colorTags) {
		t.Errorf("Colors() returned %d names, want %d", got, len(colorTags))
	}
	if got := Fonts(); got[0] != "sans16" {
		t.Errorf("Fonts()[0] = %q, want sorted order", got[0])
	}
	found := false
	for _, e := range Effects() {
		if e == "scroll" {
			found = true
		}
	}
	if !found {
		t.Error("Effects() missing scroll")
	}
}

func TestParseClock(t *testing.T) {
	now := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "0800", false},
		{"14:30", "1430", false},
		{"0905", "0905", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"1:30", "", true},
		{"ab:cd", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseClock(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q) error = %v", tt.in, err)
			}
			if got.Format("1504") != tt.want {
				t.Errorf("ParseClock(%q) = %s, want %s", tt.in, got.Format("1504"), tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	now := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "030524", false},
		{"12/25/23", "122523", false},
		{"01-02-25", "010225", false},
		{"13/01/23", "", true},
		{"2023-12-25", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) error = %v", tt.in, err)
			}
			if got.Format("010206") != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got.Format("010206"), tt.want)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	if n, err := ParseInt("freq", "", 7); err != nil || n != 7 {
		t.Errorf("ParseInt(empty) = %d, %v; want 7, nil", n, err)
	}
	if n, err := ParseInt("freq", " 12 ", 0); err != nil || n != 12 {
		t.Errorf("ParseInt(12) = %d, %v; want 12, nil", n, err)
	}
	if _, err := ParseInt("freq", "x", 0); err == nil {
		t.Error("ParseInt(x) expected error")
	}
}

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{"true": true, "TRUE": true, "false": false, "1": false, "": false} {
		if got := ParseBool(in); got != want {
			t.Errorf("ParseBool(%q) = %v, want %v", in, got, want)
		}
	}
}
