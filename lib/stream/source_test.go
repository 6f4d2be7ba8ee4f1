package stream

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestNewSink(t *testing.T) {
	s := NewSource(zaptest.NewLogger(t), 1)

	var wg sync.WaitGroup

	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink := s.NewSink()
			assert.NotNil(t, sink)
		}()
	}

	wg.Wait()
	assert.Equal(t, 1000, s.sinkCount())
}

func TestSinkRemove(t *testing.T) {
	s := NewSource(zaptest.NewLogger(t), 1)

	var wg sync.WaitGroup

	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink := s.NewSink()
			assert.NotNil(t, sink)
			sink.Close()
			sink.Close()
		}()
	}

	wg.Wait()
	assert.Equal(t, 0, s.sinkCount())
}

func TestMessaging(t *testing.T) {
	s := NewSource(zaptest.NewLogger(t), 5)

	var sinks []*Sink
	for i := 0; i < 100; i++ {
		sinks = append(sinks, s.NewSink())
	}

	for i := 0; i < 5; i++ {
		s.SendMessage(i)
	}

	for _, sink := range sinks {
		for i := 0; i < 5; i++ {
			msg := <-sink.Messages()
			assert.Equal(t, i, msg)
		}
		sink.Close()
	}

	assert.Equal(t, 0, s.sinkCount())
}

func TestFullSinkDropsMessages(t *testing.T) {
	s := NewSource(zaptest.NewLogger(t), 1)
	sink := s.NewSink()
	defer sink.Close()

	s.SendMessage("first")
	s.SendMessage("second")

	assert.Equal(t, "first", <-sink.Messages())
	select {
	case msg := <-sink.Messages():
		t.Fatalf("unexpected message %v", msg)
	default:
	}
}

func TestClosedSinkChannelIsClosed(t *testing.T) {
	s := NewSource(zaptest.NewLogger(t), 1)
	sink := s.NewSink()
	sink.Close()

	s.SendMessage("ignored")

	_, ok := <-sink.Messages()
	assert.False(t, ok)
}
