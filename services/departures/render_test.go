package departures

import (
	"testing"

	"github.com/rmrobinson/gtfsboard/lib/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogRenderer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := NewLogRenderer(zap.New(core))

	r.Render(Build([]Trip{
		tripAt("A", "S1", "T1", 10),
		tripAt("B", "S1", "T2", 12),
	}, 3, baseTime))

	entries := logs.FilterMessage("upcoming departures").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].ContextMap()["route_name"])
	assert.Equal(t, "T2", entries[1].ContextMap()["terminus"])

	r.Render(nil)
	assert.Equal(t, 1, logs.FilterMessage("no upcoming departures").Len())
}

func TestStreamRenderer(t *testing.T) {
	source := stream.NewSource(zaptest.NewLogger(t), 1)
	sink := source.NewSink()
	defer sink.Close()

	board := Build([]Trip{tripAt("A", "S1", "T1", 10)}, 3, baseTime)
	NewStreamRenderer(source).Render(board)

	msg := <-sink.Messages()
	assert.Equal(t, board, msg)
}

func TestRenderFunc(t *testing.T) {
	var rendered []DisplayGroup
	var r Renderer = RenderFunc(func(groups []DisplayGroup) {
		rendered = groups
	})

	board := Build([]Trip{tripAt("A", "S1", "T1", 10)}, 3, baseTime)
	r.Render(board)
	assert.Equal(t, board, rendered)
}

func TestMultiRenderer(t *testing.T) {
	first := &recordingRenderer{}
	second := &recordingRenderer{}

	board := Build([]Trip{tripAt("A", "S1", "T1", 10)}, 3, baseTime)
	MultiRenderer{first, second}.Render(board)

	assert.Equal(t, board, first.last())
	assert.Equal(t, board, second.last())
}
