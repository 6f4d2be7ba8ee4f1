package transit

import (
	"time"

	"github.com/rmrobinson/gtfsboard/services/transit/gtfs"
)

// serviceCalendar answers whether a service runs on a given day.
type serviceCalendar struct {
	calendars map[string]*gtfs.Calendar
	// service ID -> date (YYYYMMDD) -> exception
	exceptions map[string]map[string]gtfs.ExceptionType
}

func newServiceCalendar(calendars []*gtfs.Calendar, dates []*gtfs.CalendarDate) *serviceCalendar {
	sc := &serviceCalendar{
		calendars:  map[string]*gtfs.Calendar{},
		exceptions: map[string]map[string]gtfs.ExceptionType{},
	}

	for _, c := range calendars {
		sc.calendars[c.ServiceID] = c
	}
	for _, d := range dates {
		if _, ok := sc.exceptions[d.ServiceID]; !ok {
			sc.exceptions[d.ServiceID] = map[string]gtfs.ExceptionType{}
		}
		sc.exceptions[d.ServiceID][d.Date.Format(gtfs.DateFormat)] = d.ExceptionType
	}

	return sc
}

// activeOn reports whether the service runs on the calendar day of date.
// Calendar date exceptions override the weekly calendar.
func (sc *serviceCalendar) activeOn(serviceID string, date time.Time) bool {
	day := date.Format(gtfs.DateFormat)

	if exceptions, ok := sc.exceptions[serviceID]; ok {
		switch exceptions[day] {
		case gtfs.ExceptionAdded:
			return true
		case gtfs.ExceptionRemoved:
			return false
		}
	}

	c, ok := sc.calendars[serviceID]
	if !ok {
		return false
	}
	// the date strings sort chronologically, and both bounds are inclusive
	if day < c.StartDate.Format(gtfs.DateFormat) || day > c.EndDate.Format(gtfs.DateFormat) {
		return false
	}

	switch date.Weekday() {
	case time.Monday:
		return bool(c.Monday)
	case time.Tuesday:
		return bool(c.Tuesday)
	case time.Wednesday:
		return bool(c.Wednesday)
	case time.Thursday:
		return bool(c.Thursday)
	case time.Friday:
		return bool(c.Friday)
	case time.Saturday:
		return bool(c.Saturday)
	default:
		return bool(c.Sunday)
	}
}
