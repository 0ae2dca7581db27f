//go:build !noserial

package transport

import (
	"context"
	"errors"
	"testing"
)

func TestSerialOpenMissingDevice(t *testing.T) {
	tr, err := New("/dev/alphasign-does-not-exist", Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tr.Kind() != KindSerial {
		t.Fatalf("Kind() = %v, want serial", tr.Kind())
	}

	if err := tr.Open(context.Background()); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Open() error = %v, want ErrConnectionFailed", err)
	}
	if err := tr.Write([]byte("x")); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Write() error = %v, want ErrNotOpen", err)
	}
	if _, err := tr.Read(-1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Read(-1) error = %v, want ErrInvalidSize", err)
	}
	if err := tr.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
