package transit

import (
	"strings"
	"time"

	"github.com/rmrobinson/gtfsboard/services/transit/gtfs"
)

// agencyDetails pairs an agency with its resolved time zone.
type agencyDetails struct {
	*gtfs.Agency

	loc *time.Location
}

func newAgencyDetails(a *gtfs.Agency) *agencyDetails {
	loc, err := time.LoadLocation(a.TZ)
	if err != nil {
		loc = time.UTC
	}
	return &agencyDetails{
		Agency: a,
		loc:    loc,
	}
}

// routeDetails is a route along with the trips that follow it.
type routeDetails struct {
	*gtfs.Route

	agency *agencyDetails
	trips  []*tripDetails
}

// displayName returns the name riders know the route by if it matches the supplied name.
func (r *routeDetails) displayName(name string) (string, bool) {
	if len(r.ShortName) > 0 && strings.EqualFold(r.ShortName, name) {
		return r.ShortName, true
	} else if len(r.LongName) > 0 && strings.EqualFold(r.LongName, name) {
		return r.LongName, true
	}
	return "", false
}

// tripDetails represents a single instance of a route, with a specified set of scheduled arrivals.
type tripDetails struct {
	*gtfs.Trip

	route *routeDetails
	stops []*arrivalDetails
}

// lastStop returns the final stop of the trip, if the trip has any stops.
func (t *tripDetails) lastStop() *stopDetails {
	if len(t.stops) < 1 {
		return nil
	}
	return t.stops[len(t.stops)-1].stop
}

// stopDetails represents a single stop that one or more route trips may visit.
type stopDetails struct {
	*gtfs.Stop

	arrivals []*arrivalDetails
}

// arrivalDetails is the occurrence of a trip visiting a stop.
type arrivalDetails struct {
	*gtfs.StopTime

	trip *tripDetails
	stop *stopDetails
}

// departureTime prefers the departure time, falling back to the arrival time.
func (a *arrivalDetails) departureTime() gtfs.CSVTime {
	if a.DepartureTime.Set {
		return a.DepartureTime
	}
	return a.ArrivalTime
}

// terminus is the destination the vehicle displays when it visits this stop.
func (a *arrivalDetails) terminus() string {
	if len(a.Headsign) > 0 {
		return a.Headsign
	} else if len(a.trip.Headsign) > 0 {
		return a.trip.Headsign
	} else if last := a.trip.lastStop(); last != nil {
		return last.Name
	}
	return a.trip.route.LongName
}
