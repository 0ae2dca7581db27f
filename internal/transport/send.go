package transport

import (
	"bytes"
	"fmt"
	"time"
)

// FragmentPause is the delay after each fragment written by Send. Signs
// drop bytes when a second packet arrives while they still process the
// first.
const FragmentPause = 100 * time.Millisecond

// eot terminates every packet.
const eot = 0x04

// Writer is the part of a Transport that Send needs.
type Writer interface {
	Write(p []byte) error
}

// Split cuts data after every EOT byte. The EOT stays with the fragment it
// ends. Trailing bytes with no EOT form a final fragment.
func Split(data []byte) [][]byte {
	var parts [][]byte
	for len(data) > 0 {
		i := bytes.IndexByte(data, eot)
		if i < 0 {
			parts = append(parts, data)
			break
		}
		parts = append(parts, data[:i+1])
		data = data[i+1:]
	}
	return parts
}

// Send writes data one packet at a time, pausing FragmentPause after each.
// The first write error aborts the sequence. Send cannot be cancelled
// between fragments.
//
// Thread Safety: Not safe for concurrent use on the same Writer; callers
// serialise through the sign client lock.
func Send(w Writer, data []byte) error {
	return send(w, data, FragmentPause, time.Sleep)
}

func send(w Writer, data []byte, pause time.Duration, sleep func(time.Duration)) error {
	parts := Split(data)
	for i, part := range parts {
		if err := w.Write(part); err != nil {
			return fmt.Errorf("fragment %d/%d: %w", i+1, len(parts), err)
		}
		sleep(pause)
	}
	return nil
}
