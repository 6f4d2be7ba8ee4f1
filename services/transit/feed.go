package transit

import (
	"sort"
	"strings"
	"time"

	"github.com/rmrobinson/gtfsboard/services/departures"
	"github.com/rmrobinson/gtfsboard/services/transit/gtfs"
	"go.uber.org/zap"
)

// Feed is a queryable index over a single static GTFS dataset.
type Feed struct {
	logger *zap.Logger

	agencies    map[string]*agencyDetails
	stops       map[string]*stopDetails
	stopsByName map[string][]*stopDetails
	routes      map[string]*routeDetails
	trips       map[string]*tripDetails
	calendar    *serviceCalendar

	defaultAgency *agencyDetails
}

// NewFeed indexes the supplied dataset.
func NewFeed(logger *zap.Logger, dataset *gtfs.Dataset) *Feed {
	f := &Feed{
		logger:      logger,
		agencies:    map[string]*agencyDetails{},
		stops:       map[string]*stopDetails{},
		stopsByName: map[string][]*stopDetails{},
		routes:      map[string]*routeDetails{},
		trips:       map[string]*tripDetails{},
		calendar:    newServiceCalendar(dataset.Calendars, dataset.CalendarDates),
	}

	f.setup(dataset)
	return f
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// setup populates the internal data structures used to support queries against this feed.
func (f *Feed) setup(dataset *gtfs.Dataset) {
	for _, a := range dataset.Agencies {
		details := newAgencyDetails(a)
		f.agencies[a.ID] = details
		if f.defaultAgency == nil {
			f.defaultAgency = details
		}
	}
	if f.defaultAgency == nil {
		f.defaultAgency = newAgencyDetails(&gtfs.Agency{TZ: "UTC"})
	}

	for _, s := range dataset.Stops {
		stop := &stopDetails{
			Stop: s,
		}
		f.stops[s.ID] = stop

		name := normalizeName(s.Name)
		f.stopsByName[name] = append(f.stopsByName[name], stop)
	}
	for _, r := range dataset.Routes {
		agency, ok := f.agencies[r.AgencyID]
		if !ok {
			agency = f.defaultAgency
		}
		f.routes[r.ID] = &routeDetails{
			Route:  r,
			agency: agency,
		}
	}

	for _, gtfsTrip := range dataset.Trips {
		route, ok := f.routes[gtfsTrip.RouteID]
		if !ok {
			f.logger.Info("trip specified missing route ID",
				zap.String("trip_id", gtfsTrip.ID),
				zap.String("route_id", gtfsTrip.RouteID),
			)
			continue
		}

		trip := &tripDetails{
			Trip:  gtfsTrip,
			route: route,
		}
		f.trips[gtfsTrip.ID] = trip
		route.trips = append(route.trips, trip)
	}

	for _, gtfsStopTime := range dataset.StopTimes {
		trip, ok := f.trips[gtfsStopTime.TripID]
		if !ok {
			f.logger.Info("stop time specified missing trip ID",
				zap.String("trip_id", gtfsStopTime.TripID),
				zap.String("stop_id", gtfsStopTime.StopID),
			)
			continue
		}
		stop, ok := f.stops[gtfsStopTime.StopID]
		if !ok {
			f.logger.Info("stop time specified missing stop ID",
				zap.String("trip_id", gtfsStopTime.TripID),
				zap.String("stop_id", gtfsStopTime.StopID),
			)
			continue
		}

		arrival := &arrivalDetails{
			StopTime: gtfsStopTime,
			stop:     stop,
			trip:     trip,
		}

		trip.stops = append(trip.stops, arrival)
		stop.arrivals = append(stop.arrivals, arrival)
	}

	// Trips are ordered by sequence, and stops have their arrivals ordered by departure time.
	for _, trip := range f.trips {
		stops := trip.stops
		sort.SliceStable(stops, func(i, j int) bool {
			return stops[i].Sequence < stops[j].Sequence
		})
	}
	for _, stop := range f.stops {
		arrivals := stop.arrivals
		sort.SliceStable(arrivals, func(i, j int) bool {
			return arrivals[i].departureTime().Offset() < arrivals[j].departureTime().Offset()
		})
	}

	f.logger.Info("feed indexed",
		zap.Int("agency_count", len(f.agencies)),
		zap.Int("stop_count", len(f.stops)),
		zap.Int("route_count", len(f.routes)),
		zap.Int("trip_count", len(f.trips)),
	)
}

// Departures returns the trips matching the query which leave the stop after from and no later than from+window.
// Routes match on either their short or long name and stops match on name, both ignoring case.
// Results are ordered by departure time.
func (f *Feed) Departures(q departures.Query, from time.Time, window time.Duration) []departures.Trip {
	until := from.Add(window)

	var results []departures.Trip
	for _, stop := range f.stopsByName[normalizeName(q.StopName)] {
		for _, arrival := range stop.arrivals {
			trip := arrival.trip
			if int(trip.DirectionID) != int(q.Direction) {
				continue
			}
			routeName, ok := trip.route.displayName(q.RouteName)
			if !ok {
				continue
			}

			departure := arrival.departureTime()
			if !departure.Set {
				continue
			}

			// times past midnight belong to the previous service day, so start a day early
			loc := trip.route.agency.loc
			last := serviceDay(until.In(loc))
			for day := serviceDay(from.In(loc)).AddDate(0, 0, -1); !day.After(last); day = day.AddDate(0, 0, 1) {
				if !f.calendar.activeOn(trip.ServiceID, day) {
					continue
				}

				stopTime := departure.On(day)
				if !stopTime.After(from) || stopTime.After(until) {
					continue
				}

				results = append(results, departures.Trip{
					RouteName: routeName,
					StopName:  stop.Name,
					Terminus:  arrival.terminus(),
					StopTime:  stopTime,
				})
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].StopTime.Before(results[j].StopTime)
	})
	return results
}

// serviceDay returns noon on the calendar day of t.
func serviceDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
}
