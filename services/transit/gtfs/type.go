package gtfs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateFormat is the layout of GTFS dates.
	DateFormat = "20060102"
)

var (
	// ErrInvalidBoolField is returned if a boolean field has invalid data
	ErrInvalidBoolField = errors.New("invalid boolean field supplied")
	// ErrInvalidTimeField is returned if a time field is not in H:MM:SS form
	ErrInvalidTimeField = errors.New("invalid time field supplied")
)

// parseOptionalInt treats an empty field as zero, as GTFS leaves most optional numeric fields blank.
func parseOptionalInt(csv string) (int, error) {
	csv = strings.TrimSpace(csv)
	if len(csv) < 1 {
		return 0, nil
	}

	val, err := strconv.ParseInt(csv, 10, 32)
	return int(val), err
}

// CSVBool is a CSV marshalable boolean value
type CSVBool bool

// MarshalCSV marshals the value into a string format
func (b CSVBool) MarshalCSV() (string, error) {
	if b {
		return "1", nil
	}
	return "0", nil
}

// UnmarshalCSV accepts 0, 1 or an empty field.
func (b *CSVBool) UnmarshalCSV(csv string) error {
	val, err := parseOptionalInt(csv)
	if err != nil {
		return err
	}

	switch val {
	case 0:
		*b = false
	case 1:
		*b = true
	default:
		return ErrInvalidBoolField
	}
	return nil
}

// CSVDate is a GTFS date parsed from CSV
type CSVDate struct {
	time.Time
}

// MarshalCSV marshals the value into a string format
func (d CSVDate) MarshalCSV() (string, error) {
	return d.Format(DateFormat), nil
}

// UnmarshalCSV parses a YYYYMMDD date.
func (d *CSVDate) UnmarshalCSV(csv string) (err error) {
	d.Time, err = time.Parse(DateFormat, strings.TrimSpace(csv))
	return err
}

// CSVFloat is a CSV marshalable float64 value
type CSVFloat float64

// MarshalCSV marshals the value into a string format
func (f CSVFloat) MarshalCSV() (string, error) {
	return strconv.FormatFloat(float64(f), 'f', -1, 64), nil
}

// UnmarshalCSV parses a float, treating an empty field as zero.
func (f *CSVFloat) UnmarshalCSV(csv string) error {
	csv = strings.TrimSpace(csv)
	if len(csv) < 1 {
		*f = 0
		return nil
	}

	val, err := strconv.ParseFloat(csv, 64)
	if err != nil {
		return err
	}

	*f = CSVFloat(val)
	return nil
}

// CSVInt is a CSV marshalable int value
type CSVInt int

// MarshalCSV marshals the value into a string format
func (i CSVInt) MarshalCSV() (string, error) {
	return strconv.Itoa(int(i)), nil
}

// UnmarshalCSV parses an int, treating an empty field as zero.
func (i *CSVInt) UnmarshalCSV(csv string) error {
	val, err := parseOptionalInt(csv)
	*i = CSVInt(val)
	return err
}

// UnmarshalCSV parses a route_type value.
func (rt *RouteType) UnmarshalCSV(csv string) error {
	val, err := parseOptionalInt(csv)
	*rt = RouteType(val)
	return err
}

// UnmarshalCSV parses an exception_type value.
func (et *ExceptionType) UnmarshalCSV(csv string) error {
	val, err := parseOptionalInt(csv)
	*et = ExceptionType(val)
	return err
}

// CSVTime is a GTFS time of day. It is measured from noon minus 12 hours on the service day,
// and the hour may exceed 23 for trips running past midnight.
type CSVTime struct {
	Hour   int
	Minute int
	Second int
	// Set is false when the field was left empty, as it may be for stops that aren't timepoints.
	Set bool
}

// MarshalCSV marshals the value into a string format
func (t CSVTime) MarshalCSV() (string, error) {
	if !t.Set {
		return "", nil
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second), nil
}

// UnmarshalCSV parses a H:MM:SS or HH:MM:SS value.
func (t *CSVTime) UnmarshalCSV(csv string) error {
	csv = strings.TrimSpace(csv)
	if len(csv) < 1 {
		*t = CSVTime{}
		return nil
	}

	parts := strings.Split(csv, ":")
	if len(parts) != 3 {
		return ErrInvalidTimeField
	}

	var vals [3]int
	for idx, part := range parts {
		val, err := strconv.Atoi(part)
		if err != nil || val < 0 {
			return ErrInvalidTimeField
		}
		vals[idx] = val
	}
	if vals[1] > 59 || vals[2] > 59 {
		return ErrInvalidTimeField
	}

	*t = CSVTime{
		Hour:   vals[0],
		Minute: vals[1],
		Second: vals[2],
		Set:    true,
	}
	return nil
}

// Offset returns the time since the start of the service day.
func (t CSVTime) Offset() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute + time.Duration(t.Second)*time.Second
}

// On returns the absolute time this value represents on the service day containing date,
// interpreted in the location of date.
func (t CSVTime) On(date time.Time) time.Time {
	noon := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, date.Location())
	return noon.Add(-12 * time.Hour).Add(t.Offset())
}
