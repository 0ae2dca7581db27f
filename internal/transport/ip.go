package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"
)

// IPTransport talks to a sign through a serial-to-TCP converter.
type IPTransport struct {
	host string
	port int
	opts Options

	mu   sync.Mutex
	conn net.Conn
}

var _ Transport = (*IPTransport)(nil)

// NewIP returns an unopened transport for a host[:port] target.
func NewIP(target string, opts Options) (*IPTransport, error) {
	host, port, err := ParseIPTarget(target)
	if err != nil {
		return nil, err
	}
	return &IPTransport{host: host, port: port, opts: opts.withDefaults()}, nil
}

// Kind returns KindIP.
func (t *IPTransport) Kind() Kind { return KindIP }

// Target returns host:port.
func (t *IPTransport) Target() string {
	return net.JoinHostPort(t.host, strconv.Itoa(t.port))
}

// Open dials the converter within the connect timeout.
func (t *IPTransport) Open(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		return nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, t.opts.ConnectTimeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(dialCtx, "tcp", t.Target())
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConnectionFailed, t.Target(), err)
	}
	t.conn = conn
	return nil
}

func (t *IPTransport) current() net.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}

// Write sends p within the write timeout.
func (t *IPTransport) Write(p []byte) error {
	conn := t.current()
	if conn == nil {
		return ErrNotOpen
	}

	if err := conn.SetWriteDeadline(time.Now().Add(t.opts.WriteTimeout)); err != nil {
		return fmt.Errorf("%w: set deadline: %w", ErrWriteFailed, err)
	}
	if _, err := conn.Write(p); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, t.Target(), err)
	}
	return nil
}

// Read waits up to the read timeout for at most size bytes.
func (t *IPTransport) Read(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	conn := t.current()
	if conn == nil {
		return nil, ErrNotOpen
	}

	if err := conn.SetReadDeadline(time.Now().Add(t.opts.ReadTimeout)); err != nil {
		return nil, fmt.Errorf("%w: set deadline: %w", ErrReadFailed, err)
	}

	buf := make([]byte, size)
	n, err := conn.Read(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return buf[:n], nil
		}
		if n > 0 {
			return buf[:n], nil
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, t.Target(), err)
	}
	return buf[:n], nil
}

// Close closes the connection. Errors from the underlying socket are
// discarded.
func (t *IPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}
	return nil
}
