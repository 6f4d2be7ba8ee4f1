package departures

import (
	"context"
	"fmt"
	"time"
)

// Direction is the GTFS direction_id of the trips a query is interested in.
type Direction int

const (
	// DirectionOutbound is direction_id 0.
	DirectionOutbound Direction = 0
	// DirectionInbound is direction_id 1.
	DirectionInbound Direction = 1
)

// String presents the caller with a human readable version of this enum.
func (d Direction) String() string {
	switch d {
	case DirectionOutbound:
		return "outbound"
	case DirectionInbound:
		return "inbound"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Query identifies a (route, stop, direction) that the board tracks.
type Query struct {
	RouteName string    `mapstructure:"route_name" yaml:"route_name" validate:"required"`
	StopName  string    `mapstructure:"stop_name" yaml:"stop_name" validate:"required"`
	Direction Direction `mapstructure:"direction" yaml:"direction" validate:"oneof=0 1"`
}

// Trip is one scheduled vehicle visit to a stop.
type Trip struct {
	RouteName string    `yaml:"route_name"`
	StopName  string    `yaml:"stop_name"`
	Terminus  string    `yaml:"terminus"`
	StopTime  time.Time `yaml:"stop_time"`
}

// Valid reports whether the trip carries the fields the board needs.
// The terminus is optional.
func (t Trip) Valid() bool {
	return len(t.RouteName) > 0 && len(t.StopName) > 0 && !t.StopTime.IsZero()
}

// Provider answers queries against a loaded transit dataset.
// An empty result is a valid answer and not an error.
type Provider interface {
	RunQuery(ctx context.Context, q Query) ([]Trip, error)
}

// Renderer displays a built board. Each call fully replaces whatever was displayed before.
type Renderer interface {
	Render(groups []DisplayGroup)
}
