//go:build noserial

package transport

import "fmt"

// SerialAvailable reports whether this build can open serial devices.
const SerialAvailable = false

// exampleIPTarget is suggested to users who request a serial device from
// a build without serial support.
const exampleIPTarget = "192.168.133.54:10001"

func newSerial(path string, _ Options) (Transport, error) {
	return nil, fmt.Errorf("%w: cannot open %s; use an IP target such as %s instead",
		ErrSerialUnavailable, path, exampleIPTarget)
}
