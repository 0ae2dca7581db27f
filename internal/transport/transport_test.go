package transport

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		target string
		want   Kind
	}{
		{"", KindSerial},
		{"/dev/ttyUSB0", KindSerial},
		{"/dev/ttyS1", KindSerial},
		{"COM3", KindSerial},
		{"192.168.1.50", KindIP},
		{"192.168.1.50:10001", KindIP},
		{"sign.local", KindIP},
		{"sign:4000", KindIP},
		{"localhost:10001", KindIP},
		{"10.0.0", KindSerial},
		{"1.2.3.4.5", KindSerial},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			if got := Classify(tt.target); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestParseIPTarget(t *testing.T) {
	tests := []struct {
		target   string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{target: "192.168.1.50", wantHost: "192.168.1.50", wantPort: 10001},
		{target: "192.168.1.50:4001", wantHost: "192.168.1.50", wantPort: 4001},
		{target: "sign.local", wantHost: "sign.local", wantPort: 10001},
		{target: "host:abc", wantErr: true},
		{target: "host:0", wantErr: true},
		{target: "host:70000", wantErr: true},
		{target: ":10001", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			host, port, err := ParseIPTarget(tt.target)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTarget) {
					t.Fatalf("ParseIPTarget(%q) error = %v, want ErrInvalidTarget", tt.target, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseIPTarget(%q) error = %v", tt.target, err)
			}
			if host != tt.wantHost || port != tt.wantPort {
				t.Errorf("ParseIPTarget(%q) = %s, %d; want %s, %d", tt.target, host, port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestNewSelectsVariant(t *testing.T) {
	tr, err := New("192.168.1.50", Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tr.Kind() != KindIP {
		t.Errorf("Kind() = %v, want ip", tr.Kind())
	}
	if tr.Target() != "192.168.1.50:10001" {
		t.Errorf("Target() = %q", tr.Target())
	}

	if _, err := New("", Options{}); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("New(\"\") error = %v, want ErrInvalidTarget", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.BaudRate != DefaultBaudRate || o.ReadTimeout != DefaultReadTimeout ||
		o.ConnectTimeout != DefaultConnectTimeout || o.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("withDefaults() = %+v", o)
	}

	o = Options{BaudRate: 19200}.withDefaults()
	if o.BaudRate != 19200 {
		t.Errorf("BaudRate = %d, want 19200", o.BaudRate)
	}
}

func TestKindString(t *testing.T) {
	if KindSerial.String() != "serial" || KindIP.String() != "ip" || Kind(9).String() != "unknown" {
		t.Error("Kind.String() mismatch")
	}
}

func TestAvailable(t *testing.T) {
	got := Available()
	if len(got) == 0 || got[0] != "ip" {
		t.Fatalf("Available() = %v, want ip first", got)
	}
	wantSerial := SerialAvailable
	hasSerial := len(got) == 2 && got[1] == "serial"
	if hasSerial != wantSerial {
		t.Errorf("Available() = %v, SerialAvailable = %v", got, SerialAvailable)
	}
}
