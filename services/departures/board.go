package departures

import (
	"math"
	"time"
)

const (
	// DefaultDeparturesPerRoute is the number of departures shown per route and terminus.
	DefaultDeparturesPerRoute = 3
)

// Departure is a single row of the board.
type Departure struct {
	StopTime time.Time `yaml:"stop_time"`
	Minutes  int       `yaml:"minutes"`
}

// RouteGroup is the set of departures of one route heading to one terminus.
type RouteGroup struct {
	RouteName  string      `yaml:"route_name"`
	Terminus   string      `yaml:"terminus"`
	Departures []Departure `yaml:"departures"`
}

// DisplayGroup is a single stop section of the board.
type DisplayGroup struct {
	StopName string       `yaml:"stop_name"`
	Routes   []RouteGroup `yaml:"routes"`
}

type routeKey struct {
	routeName string
	terminus  string
}

// Build turns a list of trips into board sections.
//
// Stops, and the route/terminus pairs within a stop, appear in the order they are first seen in trips.
// Departures keep the order of trips and are not sorted by time; at most maxPerGroup are kept for each
// route/terminus pair. A maxPerGroup below 1 uses DefaultDeparturesPerRoute.
func Build(trips []Trip, maxPerGroup int, now time.Time) []DisplayGroup {
	if maxPerGroup < 1 {
		maxPerGroup = DefaultDeparturesPerRoute
	}

	var groups []DisplayGroup
	stopIdx := map[string]int{}
	routeIdx := map[string]map[routeKey]int{}

	for _, trip := range trips {
		sIdx, ok := stopIdx[trip.StopName]
		if !ok {
			sIdx = len(groups)
			stopIdx[trip.StopName] = sIdx
			routeIdx[trip.StopName] = map[routeKey]int{}
			groups = append(groups, DisplayGroup{StopName: trip.StopName})
		}
		group := &groups[sIdx]

		key := routeKey{trip.RouteName, trip.Terminus}
		rIdx, ok := routeIdx[trip.StopName][key]
		if !ok {
			rIdx = len(group.Routes)
			routeIdx[trip.StopName][key] = rIdx
			group.Routes = append(group.Routes, RouteGroup{
				RouteName: trip.RouteName,
				Terminus:  trip.Terminus,
			})
		}
		route := &group.Routes[rIdx]

		if len(route.Departures) >= maxPerGroup {
			continue
		}

		route.Departures = append(route.Departures, Departure{
			StopTime: trip.StopTime,
			Minutes:  MinutesUntil(trip.StopTime, now),
		})
	}

	return groups
}

// MinutesUntil returns the number of whole minutes from now until t, rounded half away from zero.
func MinutesUntil(t time.Time, now time.Time) int {
	return int(math.Round(float64(t.Sub(now)) / float64(time.Minute)))
}
