package alpha

import "testing"

func TestEscapeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ascii unchanged", in: "Hello <C:RED>", want: "Hello <C:RED>"},
		{name: "a umlaut", in: "Hä", want: "H\x08\x24"},
		{name: "all nordic", in: "äÄöÖåÅ", want: "\x08\x24\x08\x2e\x08\x34\x08\x39\x08\x26\x08\x2f"},
		{name: "decomposed umlaut", in: "a\u0308", want: "\x08\x24"},
		{name: "unsupported accent", in: "café", want: "caf_"},
		{name: "one underscore per rune", in: "日本", want: "__"},
		{name: "control bytes kept", in: "\x1c1", want: "\x1c1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeText(tt.in); got != tt.want {
				t.Errorf("EscapeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
