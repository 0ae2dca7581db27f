package transport

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Kind identifies a transport variant.
type Kind int

// Transport kinds.
const (
	KindSerial Kind = iota
	KindIP
)

// String returns "serial" or "ip".
func (k Kind) String() string {
	switch k {
	case KindSerial:
		return "serial"
	case KindIP:
		return "ip"
	default:
		return "unknown"
	}
}

// Defaults applied by Options when a field is zero.
const (
	DefaultIPPort         = 10001
	DefaultBaudRate       = 9600
	DefaultConnectTimeout = 1 * time.Second
	DefaultReadTimeout    = 1 * time.Second
	DefaultWriteTimeout   = 5 * time.Second
)

// Transport is a byte pipe to one sign.
type Transport interface {
	// Open establishes the link. Opening an open transport is a no-op.
	Open(ctx context.Context) error

	// Write sends p in full or returns an error.
	Write(p []byte) error

	// Read returns up to size bytes. It returns an empty slice and a nil
	// error when nothing arrives before the read timeout, and
	// ErrInvalidSize for a negative size.
	Read(size int) ([]byte, error)

	// Close releases the link. It is idempotent and never fails.
	Close() error

	// Kind reports the transport variant.
	Kind() Kind

	// Target returns the device path or host:port.
	Target() string
}

// Options tune a transport. Zero values select the defaults.
type Options struct {
	BaudRate       int
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

func (o Options) withDefaults() Options {
	if o.BaudRate == 0 {
		o.BaudRate = DefaultBaudRate
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.ReadTimeout == 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	if o.WriteTimeout == 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
	return o
}

var dottedQuad = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

// Classify decides whether target names a serial device or an IP
// endpoint. Rules apply in order:
//
//  1. empty → serial
//  2. contains ':' and does not start with '/' → IP
//  3. dotted quad → IP
//  4. contains a letter and a '.' → IP
//  5. otherwise → serial
func Classify(target string) Kind {
	switch {
	case target == "":
		return KindSerial
	case strings.Contains(target, ":") && !strings.HasPrefix(target, "/"):
		return KindIP
	case dottedQuad.MatchString(target):
		return KindIP
	case strings.Contains(target, ".") && strings.IndexFunc(target, unicode.IsLetter) >= 0:
		return KindIP
	default:
		return KindSerial
	}
}

// ParseIPTarget splits target on its first ':' into host and port. The
// port defaults to DefaultIPPort.
func ParseIPTarget(target string) (host string, port int, err error) {
	host, portStr, found := strings.Cut(target, ":")
	if host == "" {
		return "", 0, fmt.Errorf("%w: %q has no host", ErrInvalidTarget, target)
	}
	if !found {
		return host, DefaultIPPort, nil
	}

	port, err = strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("%w: %q has invalid port %q", ErrInvalidTarget, target, portStr)
	}
	return host, port, nil
}

// New returns an unopened transport for target.
func New(target string, opts Options) (Transport, error) {
	opts = opts.withDefaults()

	switch Classify(target) {
	case KindIP:
		return NewIP(target, opts)
	default:
		if target == "" {
			return nil, fmt.Errorf("%w: serial device path is required", ErrInvalidTarget)
		}
		return newSerial(target, opts)
	}
}

// Open classifies target, creates the matching transport and opens it.
func Open(ctx context.Context, target string, opts Options) (Transport, error) {
	t, err := New(target, opts)
	if err != nil {
		return nil, err
	}
	if err := t.Open(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Available lists the transport kinds this build can open. IP is always
// present; serial depends on the noserial build tag.
func Available() []string {
	kinds := []string{KindIP.String()}
	if SerialAvailable {
		kinds = append(kinds, KindSerial.String())
	}
	return kinds
}
