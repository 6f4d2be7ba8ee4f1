package stream

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Source represents a message source that will be broadcast to its sinks.
// Messages are delivered as-is; sinks must treat them as read-only.
type Source struct {
	logger *zap.Logger

	bufferSize int

	sinks     map[string]*Sink
	sinksLock sync.Mutex
}

// NewSource creates a new message source. Each sink buffers up to bufferSize messages;
// values below 1 leave a single slot so only the most recent undelivered message waits.
func NewSource(logger *zap.Logger, bufferSize int) *Source {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Source{
		logger:     logger,
		bufferSize: bufferSize,
		sinks:      map[string]*Sink{},
	}
}

// NewSink creates a message sink for this source.
func (s *Source) NewSink() *Sink {
	sink := &Sink{
		id:      uuid.New().String(),
		channel: make(chan interface{}, s.bufferSize),
		source:  s,
	}

	s.sinksLock.Lock()
	s.sinks[sink.id] = sink
	s.sinksLock.Unlock()

	s.logger.Debug("added sink",
		zap.String("sink_id", sink.id),
		zap.Int("sink_count", s.sinkCount()),
	)
	return sink
}

// SendMessage sends a message to all created sinks.
// A sink whose buffer is full misses the message rather than blocking the sender.
func (s *Source) SendMessage(msg interface{}) {
	s.sinksLock.Lock()
	defer s.sinksLock.Unlock()

	for _, sink := range s.sinks {
		select {
		case sink.channel <- msg:
		default:
			s.logger.Debug("sink blocked, dropping message",
				zap.String("sink_id", sink.id),
			)
		}
	}
}

// sinkCount returns the number of sinks currently attached.
func (s *Source) sinkCount() int {
	s.sinksLock.Lock()
	defer s.sinksLock.Unlock()

	return len(s.sinks)
}

func (s *Source) removeSink(sink *Sink) {
	s.sinksLock.Lock()
	delete(s.sinks, sink.id)
	s.sinksLock.Unlock()

	s.logger.Debug("removed sink",
		zap.String("sink_id", sink.id),
		zap.Int("sink_count", s.sinkCount()),
	)
}
