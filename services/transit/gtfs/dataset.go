package gtfs

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
)

var (
	// ErrUnknownFileName is returned if an unknown file is encountered during parsing.
	ErrUnknownFileName = errors.New("unknown file name encountered")
	// ErrUnexpectedStatus is returned if a remote dataset could not be retrieved.
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrMissingSource is returned if a source specifies neither a URL nor a path.
	ErrMissingSource = errors.New("source has no url or path")
)

// Source describes where a GTFS dataset is loaded from.
// URL takes priority over Path; Path may be a directory of CSV files or a zip archive.
type Source struct {
	URL  string `mapstructure:"url" yaml:"url" validate:"omitempty,url"`
	Path string `mapstructure:"path" yaml:"path" validate:"required_without=URL"`
	// Headers are added to the request for a remote dataset, typically for API keys.
	Headers map[string]string `mapstructure:"headers" yaml:"headers"`
	// Exclude lists files to skip, with or without the .txt extension (e.g. "shapes").
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
}

// Name returns a printable identifier of the source.
func (s Source) Name() string {
	if len(s.URL) > 0 {
		return s.URL
	}
	return s.Path
}

func (s Source) excluded(name string) bool {
	name = strings.TrimSuffix(strings.ToLower(path.Base(name)), ".txt")
	for _, exclude := range s.Exclude {
		if strings.TrimSuffix(strings.ToLower(exclude), ".txt") == name {
			return true
		}
	}
	return false
}

// Dataset represents all the data available in a GTFS-exposed dataset.
type Dataset struct {
	Agencies      []*Agency
	Stops         []*Stop
	Routes        []*Route
	Trips         []*Trip
	StopTimes     []*StopTime
	Calendars     []*Calendar
	CalendarDates []*CalendarDate

	logger *zap.Logger
	client *http.Client
}

// NewDataset creates a new dataset structure.
func NewDataset(logger *zap.Logger) *Dataset {
	gocsv.SetCSVReader(gtfsCSVReader)
	return &Dataset{
		logger: logger,
		client: &http.Client{},
	}
}

// Load loads the contents of the supplied source into this dataset.
func (ds *Dataset) Load(ctx context.Context, src Source) error {
	if len(src.URL) > 0 {
		return ds.LoadFromURL(ctx, src)
	} else if len(src.Path) < 1 {
		return ErrMissingSource
	}

	info, err := os.Stat(src.Path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return ds.LoadFromFSPath(ctx, src)
	}
	return ds.LoadFromZipPath(ctx, src)
}

// LoadFromFSPath loads the CSV files in the source's directory into this dataset.
func (ds *Dataset) LoadFromFSPath(ctx context.Context, src Source) error {
	dirEntries, err := ioutil.ReadDir(src.Path)
	if err != nil {
		return err
	}

	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() || src.excluded(dirEntry.Name()) {
			continue
		}

		err = ds.parseCSVFile(filepath.Join(src.Path, dirEntry.Name()))
		if err != nil && !errors.Is(err, ErrUnknownFileName) {
			return fmt.Errorf("parsing %s: %w", dirEntry.Name(), err)
		}
	}
	return nil
}

// LoadFromZipPath loads the contents of the source's zip archive into this dataset.
func (ds *Dataset) LoadFromZipPath(ctx context.Context, src Source) error {
	zipReader, err := zip.OpenReader(src.Path)
	if err != nil {
		return err
	}
	defer zipReader.Close()

	return ds.parseZip(&zipReader.Reader, src)
}

// LoadFromURL downloads the zip archive at the source's URL and loads it into this dataset.
func (ds *Dataset) LoadFromURL(ctx context.Context, src Source) error {
	body, err := ds.getPath(ctx, src)
	if err != nil {
		return err
	}

	zipReader, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return err
	}

	return ds.parseZip(zipReader, src)
}

func (ds *Dataset) getPath(ctx context.Context, src Source) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range src.Headers {
		req.Header.Set(k, v)
	}

	resp, err := ds.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ds.logger.Info("received non-OK response",
			zap.String("url", src.URL),
			zap.Int("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return ioutil.ReadAll(resp.Body)
}

func (ds *Dataset) parseZip(zipReader *zip.Reader, src Source) error {
	for _, zipFile := range zipReader.File {
		if zipFile.FileInfo().IsDir() || src.excluded(zipFile.Name) {
			continue
		}

		err := ds.parseZippedCSVFile(zipFile)
		if err != nil && !errors.Is(err, ErrUnknownFileName) {
			return fmt.Errorf("parsing %s: %w", zipFile.Name, err)
		}
	}
	return nil
}

func (ds *Dataset) parseCSVFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	return ds.parseFile(filepath.Base(name), f)
}

func (ds *Dataset) parseZippedCSVFile(zf *zip.File) error {
	f, err := zf.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	return ds.parseFile(path.Base(zf.Name), f)
}

// parseFile appends the records of a single GTFS file; loading several sources into one dataset accumulates them.
func (ds *Dataset) parseFile(name string, contents io.Reader) error {
	var err error

	switch name {
	case "agency.txt":
		var records []*Agency
		if err = gocsv.Unmarshal(contents, &records); err == nil {
			ds.Agencies = append(ds.Agencies, records...)
		}
	case "stops.txt":
		var records []*Stop
		if err = gocsv.Unmarshal(contents, &records); err == nil {
			ds.Stops = append(ds.Stops, records...)
		}
	case "routes.txt":
		var records []*Route
		if err = gocsv.Unmarshal(contents, &records); err == nil {
			ds.Routes = append(ds.Routes, records...)
		}
	case "trips.txt":
		var records []*Trip
		if err = gocsv.Unmarshal(contents, &records); err == nil {
			ds.Trips = append(ds.Trips, records...)
		}
	case "stop_times.txt":
		var records []*StopTime
		if err = gocsv.Unmarshal(contents, &records); err == nil {
			ds.StopTimes = append(ds.StopTimes, records...)
		}
	case "calendar.txt":
		var records []*Calendar
		if err = gocsv.Unmarshal(contents, &records); err == nil {
			ds.Calendars = append(ds.Calendars, records...)
		}
	case "calendar_dates.txt":
		var records []*CalendarDate
		if err = gocsv.Unmarshal(contents, &records); err == nil {
			ds.CalendarDates = append(ds.CalendarDates, records...)
		}
	default:
		ds.logger.Debug("skipping unknown file",
			zap.String("file_name", name),
		)
		return ErrUnknownFileName
	}

	return err
}

// This allows us to handle the fact that GTFS supports optional fields
// We do not error if the CSV row has fewer columns than the header row, for better or worse.
func gtfsCSVReader(in io.Reader) gocsv.CSVReader {
	csvReader := csv.NewReader(skipBOM(in))
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true
	return csvReader
}

// Many agencies publish files with a UTF-8 byte order mark, which would otherwise end up in the first header name.
func skipBOM(in io.Reader) io.Reader {
	br := bufio.NewReader(in)
	if r, _, err := br.ReadRune(); err != nil || r != '\uFEFF' {
		br.UnreadRune()
	}
	return br
}
