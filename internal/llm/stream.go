package llm

import (
	"context"
	"io"
)

// eventStream runs a producer goroutine and exposes its events as a Stream.
// The producer's returned error is surfaced from Recv after the channel drains;
// a nil error becomes io.EOF.
type eventStream struct {
	events chan Event
	errc   chan error
	cancel context.CancelFunc
	done   bool
	err    error
}

func newEventStream(ctx context.Context, run func(ctx context.Context, events chan<- Event) error) Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &eventStream{
		events: make(chan Event, 16),
		errc:   make(chan error, 1),
		cancel: cancel,
	}
	go func() {
		err := run(ctx, s.events)
		close(s.events)
		s.errc <- err
	}()
	return s
}

func (s *eventStream) Recv() (Event, error) {
	if s.done {
		return Event{}, s.err
	}
	event, ok := <-s.events
	if !ok {
		s.done = true
		if err := <-s.errc; err != nil {
			s.err = err
		} else {
			s.err = io.EOF
		}
		return Event{}, s.err
	}
	return event, nil
}

func (s *eventStream) Close() error {
	s.cancel()
	return nil
}
