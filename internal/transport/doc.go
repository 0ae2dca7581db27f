// Package transport delivers framed packets to a sign over a serial line
// or a serial-over-IP bridge.
//
// A target string selects the variant: device paths such as /dev/ttyUSB0
// or COM3 open a serial port, while host names, dotted quads and
// host:port pairs open a TCP connection (port 10001 unless given).
//
//	t, err := transport.Open(ctx, "192.168.1.50", transport.Options{})
//	if err != nil {
//	    return err
//	}
//	defer t.Close()
//	return transport.Send(t, packet)
//
// Transports do not reconnect on their own. After a failed write the
// owner closes the transport and opens a new one when it next needs it.
package transport
