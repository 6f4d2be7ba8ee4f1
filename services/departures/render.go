package departures

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/rmrobinson/gtfsboard/lib/stream"
	"go.uber.org/zap"
)

// LogRenderer writes each board to the supplied logger.
type LogRenderer struct {
	logger *zap.Logger
}

// NewLogRenderer creates a new renderer that logs boards.
func NewLogRenderer(logger *zap.Logger) *LogRenderer {
	return &LogRenderer{
		logger: logger,
	}
}

// Render implements the Renderer interface.
func (r *LogRenderer) Render(groups []DisplayGroup) {
	if len(groups) < 1 {
		r.logger.Info("no upcoming departures")
		return
	}

	for _, group := range groups {
		for _, route := range group.Routes {
			var minutes []int
			for _, d := range route.Departures {
				minutes = append(minutes, d.Minutes)
			}

			r.logger.Info("upcoming departures",
				zap.String("stop_name", group.StopName),
				zap.String("route_name", route.RouteName),
				zap.String("terminus", route.Terminus),
				zap.Ints("minutes", minutes),
			)
		}
	}

	if ce := r.logger.Check(zap.DebugLevel, "board contents"); ce != nil {
		ce.Write(zap.String("board", spew.Sdump(groups)))
	}
}

// StreamRenderer broadcasts each board to the sinks of a stream source.
// Subscribers receive []DisplayGroup values and must not modify them.
type StreamRenderer struct {
	source *stream.Source
}

// NewStreamRenderer creates a new renderer broadcasting to the supplied source.
func NewStreamRenderer(source *stream.Source) *StreamRenderer {
	return &StreamRenderer{
		source: source,
	}
}

// Render implements the Renderer interface.
func (r *StreamRenderer) Render(groups []DisplayGroup) {
	r.source.SendMessage(groups)
}

// RenderFunc adapts a plain function to the Renderer interface.
type RenderFunc func(groups []DisplayGroup)

// Render implements the Renderer interface.
func (f RenderFunc) Render(groups []DisplayGroup) {
	f(groups)
}

// MultiRenderer hands each board to every renderer in order.
type MultiRenderer []Renderer

// Render implements the Renderer interface.
func (m MultiRenderer) Render(groups []DisplayGroup) {
	for _, r := range m {
		r.Render(groups)
	}
}
