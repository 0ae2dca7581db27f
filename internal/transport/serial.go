//go:build !noserial

package transport

import (
	"context"
	"fmt"
	"sync"

	"go.bug.st/serial"
)

// SerialAvailable reports whether this build can open serial devices.
const SerialAvailable = true

// SerialTransport talks to a sign on a local serial port at 8N1.
type SerialTransport struct {
	path string
	opts Options

	mu   sync.Mutex
	port serial.Port
}

var _ Transport = (*SerialTransport)(nil)

func newSerial(path string, opts Options) (Transport, error) {
	return &SerialTransport{path: path, opts: opts.withDefaults()}, nil
}

// Kind returns KindSerial.
func (t *SerialTransport) Kind() Kind { return KindSerial }

// Target returns the device path.
func (t *SerialTransport) Target() string { return t.path }

// Open opens the device and applies the read timeout.
func (t *SerialTransport) Open(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConnectionFailed, t.path, err)
	}

	mode := &serial.Mode{
		BaudRate: t.opts.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(t.path, mode)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConnectionFailed, t.path, err)
	}
	if err := port.SetReadTimeout(t.opts.ReadTimeout); err != nil {
		_ = port.Close()
		return fmt.Errorf("%w: %s: set read timeout: %w", ErrConnectionFailed, t.path, err)
	}

	t.port = port
	return nil
}

func (t *SerialTransport) current() serial.Port {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port
}

// Write sends p, looping until every byte has been accepted.
func (t *SerialTransport) Write(p []byte) error {
	port := t.current()
	if port == nil {
		return ErrNotOpen
	}

	for len(p) > 0 {
		n, err := port.Write(p)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWriteFailed, t.path, err)
		}
		p = p[n:]
	}
	return nil
}

// Read returns up to size bytes, or an empty slice on timeout.
func (t *SerialTransport) Read(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	port := t.current()
	if port == nil {
		return nil, ErrNotOpen
	}

	buf := make([]byte, size)
	n, err := port.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, t.path, err)
	}
	return buf[:n], nil
}

// Close closes the port. Errors are discarded.
func (t *SerialTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port != nil {
		_ = t.port.Close()
		t.port = nil
	}
	return nil
}
