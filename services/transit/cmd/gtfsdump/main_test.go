package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rmrobinson/gtfsboard/services/departures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"
)

var now = time.Date(2020, time.March, 2, 8, 0, 0, 0, time.UTC)

type staticProvider map[departures.Query][]departures.Trip

func (p staticProvider) RunQuery(ctx context.Context, q departures.Query) ([]departures.Trip, error) {
	trips, ok := p[q]
	if !ok {
		return nil, errors.New("unknown query")
	}
	return trips, nil
}

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig([]byte(`
feed:
  agencies:
    - path: /var/lib/gtfs/grt
      exclude: [shapes]
queries:
  - route_name: "7"
    stop_name: King / Victoria
    direction: 1
`))
	require.NoError(t, err)

	require.Len(t, cfg.Feed.Agencies, 1)
	assert.Equal(t, "/var/lib/gtfs/grt", cfg.Feed.Agencies[0].Path)
	assert.Equal(t, []departures.Query{
		{RouteName: "7", StopName: "King / Victoria", Direction: departures.DirectionInbound},
	}, cfg.Queries)
	assert.Equal(t, departures.DefaultDeparturesPerRoute, cfg.DeparturesPerRoute)
}

func TestDump(t *testing.T) {
	known := departures.Query{RouteName: "7", StopName: "Uptown"}
	unknown := departures.Query{RouteName: "8", StopName: "Uptown"}
	provider := staticProvider{
		known: {
			{RouteName: "7", StopName: "Uptown", Terminus: "Conestoga", StopTime: now.Add(time.Minute * 4)},
			{RouteName: "7", StopName: "Uptown", Terminus: "Conestoga", StopTime: now.Add(time.Minute * 19)},
		},
	}

	var buf bytes.Buffer
	cfg := &dumpConfig{
		Queries:            []departures.Query{unknown, known},
		DeparturesPerRoute: 1,
	}
	require.NoError(t, dump(context.Background(), zaptest.NewLogger(t), provider, cfg, now, &buf))

	var board []departures.DisplayGroup
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &board))
	require.Len(t, board, 1)
	assert.Equal(t, "Uptown", board[0].StopName)
	require.Len(t, board[0].Routes, 1)
	assert.Equal(t, "Conestoga", board[0].Routes[0].Terminus)
	require.Len(t, board[0].Routes[0].Departures, 1)
	assert.Equal(t, 4, board[0].Routes[0].Departures[0].Minutes)
}
