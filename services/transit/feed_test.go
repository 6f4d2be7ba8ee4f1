package transit

import (
	"testing"
	"time"

	"github.com/rmrobinson/gtfsboard/services/departures"
	"github.com/rmrobinson/gtfsboard/services/transit/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Monday
var baseTime = time.Date(2020, time.March, 2, 8, 0, 0, 0, time.UTC)

func date(year int, month time.Month, day int) gtfs.CSVDate {
	return gtfs.CSVDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func at(hour, minute int) gtfs.CSVTime {
	return gtfs.CSVTime{Hour: hour, Minute: minute, Set: true}
}

func testDataset() *gtfs.Dataset {
	return &gtfs.Dataset{
		Agencies: []*gtfs.Agency{
			{ID: "GRT", Name: "Grand River Transit", TZ: "UTC"},
		},
		Stops: []*gtfs.Stop{
			{ID: "s1", Name: "King / Victoria"},
			{ID: "s2", Name: "Uptown"},
		},
		Routes: []*gtfs.Route{
			{ID: "r7", AgencyID: "GRT", ShortName: "7", LongName: "Mainline", Type: gtfs.RouteTypeBus},
			{ID: "r8", AgencyID: "GRT", ShortName: "8", LongName: "Fairview"},
		},
		Trips: []*gtfs.Trip{
			{ID: "t1", RouteID: "r7", ServiceID: "WKDY", Headsign: "Conestoga", DirectionID: 0},
			{ID: "t2", RouteID: "r7", ServiceID: "WKDY", DirectionID: 1},
			{ID: "t3", RouteID: "r7", ServiceID: "WKDY", Headsign: "Conestoga", DirectionID: 0},
			{ID: "t4", RouteID: "r8", ServiceID: "WKDY", Headsign: "Fairview Park", DirectionID: 0},
			{ID: "orphan", RouteID: "missing", ServiceID: "WKDY"},
		},
		StopTimes: []*gtfs.StopTime{
			{TripID: "t1", StopID: "s2", Sequence: 2, ArrivalTime: at(8, 30), DepartureTime: at(8, 30)},
			{TripID: "t1", StopID: "s1", Sequence: 1, ArrivalTime: at(8, 10), DepartureTime: at(8, 10)},
			{TripID: "t2", StopID: "s2", Sequence: 1, ArrivalTime: at(8, 5)},
			{TripID: "t2", StopID: "s1", Sequence: 2, ArrivalTime: at(8, 20), DepartureTime: at(8, 20)},
			{TripID: "t3", StopID: "s1", Sequence: 1, ArrivalTime: at(24, 15), DepartureTime: at(24, 15), Headsign: "Fairway"},
			{TripID: "t4", StopID: "s1", Sequence: 1, ArrivalTime: at(8, 12), DepartureTime: at(8, 12)},
			{TripID: "orphan", StopID: "s1", Sequence: 1, ArrivalTime: at(8, 1)},
			{TripID: "t1", StopID: "missing", Sequence: 3, ArrivalTime: at(8, 40)},
		},
		Calendars: []*gtfs.Calendar{
			{
				ServiceID: "WKDY",
				Monday:    true,
				Tuesday:   true,
				Wednesday: true,
				Thursday:  true,
				Friday:    true,
				StartDate: date(2020, time.January, 1),
				EndDate:   date(2020, time.December, 31),
			},
		},
		CalendarDates: []*gtfs.CalendarDate{
			{ServiceID: "WKDY", Date: date(2020, time.March, 3), ExceptionType: gtfs.ExceptionRemoved},
		},
	}
}

func TestFeedIndexSkipsDanglingReferences(t *testing.T) {
	f := NewFeed(zaptest.NewLogger(t), testDataset())

	assert.Len(t, f.routes, 2)
	assert.Len(t, f.stops, 2)
	assert.NotContains(t, f.trips, "orphan")
	require.Contains(t, f.trips, "t1")
	assert.Len(t, f.trips["t1"].stops, 2)
	assert.Equal(t, "s1", f.trips["t1"].stops[0].StopID)
	assert.Equal(t, "Uptown", f.trips["t1"].lastStop().Name)
}

func TestFeedDepartures(t *testing.T) {
	f := NewFeed(zaptest.NewLogger(t), testDataset())

	trips := f.Departures(departures.Query{
		RouteName: "7",
		StopName:  "king / victoria",
		Direction: departures.DirectionOutbound,
	}, baseTime, DefaultWindow)

	assert.Equal(t, []departures.Trip{
		{
			RouteName: "7",
			StopName:  "King / Victoria",
			Terminus:  "Conestoga",
			StopTime:  time.Date(2020, time.March, 2, 8, 10, 0, 0, time.UTC),
		},
		{
			RouteName: "7",
			StopName:  "King / Victoria",
			Terminus:  "Fairway",
			StopTime:  time.Date(2020, time.March, 3, 0, 15, 0, 0, time.UTC),
		},
	}, trips)
}

func TestFeedDeparturesMatchesLongName(t *testing.T) {
	f := NewFeed(zaptest.NewLogger(t), testDataset())

	trips := f.Departures(departures.Query{
		RouteName: "MAINLINE",
		StopName:  "King / Victoria",
		Direction: departures.DirectionOutbound,
	}, baseTime, time.Hour)

	require.Len(t, trips, 1)
	assert.Equal(t, "Mainline", trips[0].RouteName)
}

func TestFeedDeparturesInbound(t *testing.T) {
	f := NewFeed(zaptest.NewLogger(t), testDataset())

	trips := f.Departures(departures.Query{
		RouteName: "7",
		StopName:  "Uptown",
		Direction: departures.DirectionInbound,
	}, baseTime, DefaultWindow)

	require.Len(t, trips, 1)
	// no stop or trip headsign, so the last stop of the trip is used
	assert.Equal(t, "King / Victoria", trips[0].Terminus)
	assert.Equal(t, time.Date(2020, time.March, 2, 8, 5, 0, 0, time.UTC), trips[0].StopTime)
}

type windowTest struct {
	name     string
	from     time.Time
	window   time.Duration
	expected int
}

var windowTests = []windowTest{
	{"departure at from is excluded", baseTime.Add(time.Minute * 10), time.Hour, 0},
	{"departure at end of window is included", baseTime, time.Minute * 10, 1},
	{"departure after window is excluded", baseTime, time.Minute * 9, 0},
	{"previous service day past midnight", time.Date(2020, time.March, 3, 0, 0, 0, 0, time.UTC), time.Hour, 1},
	{"removed date has no service", time.Date(2020, time.March, 3, 8, 0, 0, 0, time.UTC), time.Hour, 0},
	{"weekend has no service", time.Date(2020, time.March, 7, 8, 0, 0, 0, time.UTC), time.Hour, 0},
	{"outside calendar range", time.Date(2021, time.March, 1, 8, 0, 0, 0, time.UTC), time.Hour, 0},
}

func TestFeedDeparturesWindow(t *testing.T) {
	f := NewFeed(zaptest.NewLogger(t), testDataset())
	q := departures.Query{RouteName: "7", StopName: "King / Victoria", Direction: departures.DirectionOutbound}

	for _, tt := range windowTests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, f.Departures(q, tt.from, tt.window), tt.expected)
		})
	}
}

func TestFeedDeparturesNoMatch(t *testing.T) {
	f := NewFeed(zaptest.NewLogger(t), testDataset())

	assert.Empty(t, f.Departures(departures.Query{RouteName: "7", StopName: "Nowhere"}, baseTime, DefaultWindow))
	assert.Empty(t, f.Departures(departures.Query{RouteName: "200", StopName: "Uptown"}, baseTime, DefaultWindow))
}

func TestServiceCalendarActiveOn(t *testing.T) {
	sc := newServiceCalendar(testDataset().Calendars, []*gtfs.CalendarDate{
		{ServiceID: "WKDY", Date: date(2020, time.March, 3), ExceptionType: gtfs.ExceptionRemoved},
		{ServiceID: "WKDY", Date: date(2020, time.March, 7), ExceptionType: gtfs.ExceptionAdded},
		{ServiceID: "HOLIDAY", Date: date(2020, time.May, 18), ExceptionType: gtfs.ExceptionAdded},
	})

	assert.True(t, sc.activeOn("WKDY", baseTime))
	assert.False(t, sc.activeOn("WKDY", baseTime.AddDate(0, 0, 1)))
	assert.True(t, sc.activeOn("WKDY", time.Date(2020, time.March, 7, 12, 0, 0, 0, time.UTC)))
	assert.False(t, sc.activeOn("WKDY", time.Date(2020, time.March, 8, 12, 0, 0, 0, time.UTC)))
	assert.True(t, sc.activeOn("WKDY", time.Date(2020, time.January, 1, 12, 0, 0, 0, time.UTC)))
	assert.True(t, sc.activeOn("WKDY", time.Date(2020, time.December, 31, 12, 0, 0, 0, time.UTC)))
	assert.False(t, sc.activeOn("WKDY", time.Date(2021, time.January, 1, 12, 0, 0, 0, time.UTC)))
	assert.True(t, sc.activeOn("HOLIDAY", time.Date(2020, time.May, 18, 12, 0, 0, 0, time.UTC)))
	assert.False(t, sc.activeOn("HOLIDAY", time.Date(2020, time.May, 19, 12, 0, 0, 0, time.UTC)))
	assert.False(t, sc.activeOn("unknown", baseTime))
}
