package sign

import "time"

// Event describes one command attempt. Err is nil on success.
type Event struct {
	SignID  string
	Kind    string
	Source  string
	Bytes   int
	Elapsed time.Duration
	Err     error
	Time    time.Time

	// Connected reports whether the transport is still open after the
	// attempt.
	Connected bool
}

// Observer is notified after every command attempt. Implementations must
// not block; they run on the caller's goroutine while the client lock is
// held.
type Observer interface {
	ObserveCommand(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// ObserveCommand calls f(ev).
func (f ObserverFunc) ObserveCommand(ev Event) { f(ev) }
