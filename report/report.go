// Package report carries batch progress events to whoever displays them.
package report

import (
	"fmt"
	"sync"
)

type Kind int

const (
	Started Kind = iota
	Succeeded
	Failed
	Summary
)

func (k Kind) String() string {
	switch k {
	case Started:
		return "started"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Summary:
		return "summary"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is one progress notification. Path and Destination are set for job
// events, Failure and Reason for Failed, and the counts for Summary.
type Event struct {
	Kind        Kind
	Path        string
	Destination string
	Failure     string
	Reason      error

	Succeeded int
	Failed    int
	Skipped   int
}

// Sink receives events. Batches may run jobs concurrently, so Report must be
// safe for concurrent use.
type Sink interface {
	Report(Event)
}

type SinkFunc func(Event)

func (f SinkFunc) Report(e Event) {
	f(e)
}

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Recorder keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Report(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
