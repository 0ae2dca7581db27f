package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

// startSignServer accepts one connection and hands it to the test.
func startSignServer(t *testing.T) (target string, accepted <-chan net.Conn) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	ch := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		ch <- conn
	}()

	return ln.Addr().String(), ch
}

func openIP(t *testing.T, target string, opts Options) *IPTransport {
	t.Helper()
	tr, err := NewIP(target, opts)
	if err != nil {
		t.Fatalf("NewIP() error = %v", err)
	}
	if err := tr.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { tr.Close() })
	return tr
}

func TestIPTransportWrite(t *testing.T) {
	target, accepted := startSignServer(t)
	tr := openIP(t, target, Options{})

	server := <-accepted
	defer server.Close()

	packet := []byte("\x00\x00\x00\x00\x00\x01Z00\x02E,\x030034\x04")
	if err := tr.Write(packet); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got := make([]byte, len(packet))
	server.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := io.ReadFull(server, got); err != nil {
		t.Fatalf("server read: %v", err)
	}
	if !bytes.Equal(got, packet) {
		t.Errorf("server got %q, want %q", got, packet)
	}
}

func TestIPTransportReadTimeoutIsEmpty(t *testing.T) {
	target, accepted := startSignServer(t)
	tr := openIP(t, target, Options{ReadTimeout: 50 * time.Millisecond})

	server := <-accepted
	defer server.Close()

	got, err := tr.Read(16)
	if err != nil {
		t.Fatalf("Read() error = %v, want nil on timeout", err)
	}
	if len(got) != 0 {
		t.Errorf("Read() = %q, want empty", got)
	}
}

func TestIPTransportRead(t *testing.T) {
	target, accepted := startSignServer(t)
	tr := openIP(t, target, Options{ReadTimeout: time.Second})

	server := <-accepted
	defer server.Close()

	if _, err := server.Write([]byte("reply")); err != nil {
		t.Fatalf("server write: %v", err)
	}

	got, err := tr.Read(16)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "reply" {
		t.Errorf("Read() = %q, want %q", got, "reply")
	}
}

func TestIPTransportReadNegativeSize(t *testing.T) {
	target, accepted := startSignServer(t)
	tr := openIP(t, target, Options{})
	server := <-accepted
	defer server.Close()

	if _, err := tr.Read(-1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Read(-1) error = %v, want ErrInvalidSize", err)
	}
}

func TestIPTransportReadAfterPeerClose(t *testing.T) {
	target, accepted := startSignServer(t)
	tr := openIP(t, target, Options{ReadTimeout: time.Second})

	server := <-accepted
	server.Close()

	if _, err := tr.Read(16); !errors.Is(err, ErrReadFailed) {
		t.Errorf("Read() error = %v, want ErrReadFailed", err)
	}
}

func TestIPTransportOpenFails(t *testing.T) {
	// Reserve a port, then free it so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	target := ln.Addr().String()
	ln.Close()

	tr, err := NewIP(target, Options{ConnectTimeout: 200 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewIP() error = %v", err)
	}

	err = tr.Open(context.Background())
	if !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("Open() error = %v, want ErrConnectionFailed", err)
	}
	if !bytes.Contains([]byte(err.Error()), []byte(target)) {
		t.Errorf("Open() error %q does not name %s", err, target)
	}
}

func TestIPTransportCloseIdempotent(t *testing.T) {
	target, accepted := startSignServer(t)
	tr := openIP(t, target, Options{})
	server := <-accepted
	defer server.Close()

	for i := 0; i < 3; i++ {
		if err := tr.Close(); err != nil {
			t.Fatalf("Close() #%d error = %v", i+1, err)
		}
	}

	if err := tr.Write([]byte("x")); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Write() after Close error = %v, want ErrNotOpen", err)
	}
	if _, err := tr.Read(1); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Read() after Close error = %v, want ErrNotOpen", err)
	}
}

func TestOpenDispatchesIP(t *testing.T) {
	target, accepted := startSignServer(t)

	tr, err := Open(context.Background(), target, Options{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer tr.Close()
	server := <-accepted
	defer server.Close()

	if tr.Kind() != KindIP {
		t.Errorf("Kind() = %v, want ip", tr.Kind())
	}
}
