package alpha

import "testing"

func TestFileCommands(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{name: "write text", cmd: WriteText("A", LineTop, ModeRollUp, "Hej å"), want: "AA\x1b\"eHej \x08\x26"},
		{name: "write text special mode", cmd: WriteText("B", LineMiddle, ModeTwinkle, "x"), want: "AB\x1b n0x"},
		{name: "write text file", cmd: WriteTextFile("C", []byte("\x1c1Hi")), want: "AC\x1c1Hi"},
		{name: "clear text", cmd: ClearText("B"), want: "AB"},
		{name: "write string", cmd: WriteString("1", "ö"), want: "G1\x08\x34"},
		{name: "write string file", cmd: WriteStringFile("10", []byte("42")), want: "G1042"},
		{name: "allocate one text file", cmd: AllocateMemory(MemoryEntry{Label: "C", Type: FileText, Size: 0x200}), want: "E$CAL0200FF00"},
		{name: "allocate string file", cmd: AllocateMemory(MemoryEntry{Label: "2", Type: FileString, Size: 0x20}), want: "E$2BL00200000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(tt.cmd); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"rotate", ModeRotate},
		{"ROLL_UP", ModeRollUp},
		{"slot_machine", ModeSlotMachine},
		{"c_rotate", ModeCRotate},
		{"unknown", ModeRotate},
		{"", ModeRotate},
	}
	for _, tt := range tests {
		if got := ParseMode(tt.in); got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
