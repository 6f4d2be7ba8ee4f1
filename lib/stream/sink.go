package stream

import "sync"

// Sink receives the messages broadcast by its parent source.
type Sink struct {
	id      string
	channel chan interface{}

	source    *Source
	closeOnce sync.Once
}

// Messages returns the read channel of messages broadcast by the source.
// The backing channel is buffered, but the sink is still expected to drain it promptly;
// messages sent while the buffer is full are dropped for this sink.
func (s *Sink) Messages() <-chan interface{} {
	return s.channel
}

// Close detaches the sink from its source and closes the message channel.
// It is safe to call more than once.
func (s *Sink) Close() {
	s.closeOnce.Do(func() {
		// removal takes the source lock, so no send can race with the close below
		s.source.removeSink(s)
		close(s.channel)
	})
}
