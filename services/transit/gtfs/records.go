package gtfs

// Agency represents the transit agency supplying service.
type Agency struct {
	ID       string `csv:"agency_id"`
	Name     string `csv:"agency_name"`
	URL      string `csv:"agency_url"`
	TZ       string `csv:"agency_timezone"`
	Language string `csv:"agency_lang"`
	Phone    string `csv:"agency_phone"`
}

// Stop is a location where vehicles pick up or drop off riders.
type Stop struct {
	ID            string   `csv:"stop_id"`
	Code          string   `csv:"stop_code"`
	Name          string   `csv:"stop_name"`
	Description   string   `csv:"stop_desc"`
	Latitude      CSVFloat `csv:"stop_lat"`
	Longitude     CSVFloat `csv:"stop_lon"`
	LocationType  CSVInt   `csv:"location_type"`
	ParentStation string   `csv:"parent_station"`
	Timezone      string   `csv:"stop_timezone"`
}

// Route is a group of trips displayed to riders as a single service.
type Route struct {
	ID        string    `csv:"route_id"`
	AgencyID  string    `csv:"agency_id"`
	ShortName string    `csv:"route_short_name"`
	LongName  string    `csv:"route_long_name"`
	Type      RouteType `csv:"route_type"`
	Color     string    `csv:"route_color"`
	SortOrder CSVInt    `csv:"route_sort_order"`
}

// Trip is a single run of a vehicle along a route.
type Trip struct {
	ID          string `csv:"trip_id"`
	RouteID     string `csv:"route_id"`
	ServiceID   string `csv:"service_id"`
	Headsign    string `csv:"trip_headsign"`
	ShortName   string `csv:"trip_short_name"`
	DirectionID CSVInt `csv:"direction_id"`
	BlockID     string `csv:"block_id"`
}

// StopTime is the time a specific trip visits a specific stop.
type StopTime struct {
	TripID        string  `csv:"trip_id"`
	ArrivalTime   CSVTime `csv:"arrival_time"`
	DepartureTime CSVTime `csv:"departure_time"`
	StopID        string  `csv:"stop_id"`
	Sequence      CSVInt  `csv:"stop_sequence"`
	Headsign      string  `csv:"stop_headsign"`
	PickupType    CSVInt  `csv:"pickup_type"`
}

// Calendar is the set of weekdays a service runs on between two dates.
type Calendar struct {
	ServiceID string  `csv:"service_id"`
	Monday    CSVBool `csv:"monday"`
	Tuesday   CSVBool `csv:"tuesday"`
	Wednesday CSVBool `csv:"wednesday"`
	Thursday  CSVBool `csv:"thursday"`
	Friday    CSVBool `csv:"friday"`
	Saturday  CSVBool `csv:"saturday"`
	Sunday    CSVBool `csv:"sunday"`
	StartDate CSVDate `csv:"start_date"`
	EndDate   CSVDate `csv:"end_date"`
}

// ExceptionType describes how a calendar date overrides the regular calendar.
type ExceptionType int

const (
	// ExceptionAdded means service runs on the date.
	ExceptionAdded ExceptionType = 1
	// ExceptionRemoved means service does not run on the date.
	ExceptionRemoved ExceptionType = 2
)

// CalendarDate is a service override on a single date.
type CalendarDate struct {
	ServiceID     string        `csv:"service_id"`
	Date          CSVDate       `csv:"date"`
	ExceptionType ExceptionType `csv:"exception_type"`
}

// RouteType is the kind of vehicle serving a route.
type RouteType int

const (
	// RouteTypeLRT is a route served by an LRT or streetcar
	RouteTypeLRT RouteType = iota
	// RouteTypeSubway is a route served by a subway
	RouteTypeSubway
	// RouteTypeRail is a route served by a heavy rail system
	RouteTypeRail
	// RouteTypeBus is a route served by a bus
	RouteTypeBus
	// RouteTypeFerry is a route served by a ferry
	RouteTypeFerry
)

var routeTypeNames = map[RouteType]string{
	RouteTypeLRT:    "LRT/Streetcar",
	RouteTypeSubway: "Subway",
	RouteTypeRail:   "Rail",
	RouteTypeBus:    "Bus",
	RouteTypeFerry:  "Ferry",
}

// String presents the caller with a human readable version of this enum.
func (rt RouteType) String() string {
	if name, ok := routeTypeNames[rt]; ok {
		return name
	}
	return "Other"
}
