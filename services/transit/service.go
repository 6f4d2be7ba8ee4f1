package transit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rmrobinson/gtfsboard/services/departures"
	"github.com/rmrobinson/gtfsboard/services/transit/gtfs"
	"go.uber.org/zap"
)

// DefaultWindow covers a full refresh period plus an hour of slack.
const DefaultWindow = time.Hour * 25

var (
	// ErrNotReady is returned if a query is run before the feeds are loaded.
	ErrNotReady = errors.New("transit feeds not loaded")
	// ErrFeedLoad is returned if a configured feed could not be loaded.
	ErrFeedLoad = errors.New("unable to load feed")
)

// FeedConfig lists the static GTFS datasets to load, one per agency.
type FeedConfig struct {
	Agencies []gtfs.Source `mapstructure:"agencies" yaml:"agencies" validate:"required,min=1,dive"`
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithWindow sets how far ahead of the current time departures are returned.
func WithWindow(window time.Duration) ServiceOption {
	return func(s *Service) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithServiceClock replaces the source of the current time.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// Service answers departure queries against a set of loaded feeds.
type Service struct {
	logger *zap.Logger
	window time.Duration
	now    func() time.Time

	feeds     []*Feed
	feedsLock sync.RWMutex

	ready     chan struct{}
	readyOnce sync.Once
}

// NewService creates a new service. It has no feeds until Startup or AddFeed is called.
func NewService(logger *zap.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		logger: logger,
		window: DefaultWindow,
		now:    time.Now,
		ready:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Startup loads every configured feed and marks the service ready.
// Any feed failing to load fails the whole startup.
func (s *Service) Startup(ctx context.Context, cfg FeedConfig) error {
	if len(cfg.Agencies) < 1 {
		return fmt.Errorf("%w: no agencies configured", ErrFeedLoad)
	}

	var feeds []*Feed
	for _, src := range cfg.Agencies {
		s.logger.Info("loading feed",
			zap.String("source", src.Name()),
		)

		ds := gtfs.NewDataset(s.logger)
		if err := ds.Load(ctx, src); err != nil {
			s.logger.Error("error loading feed",
				zap.String("source", src.Name()),
				zap.Error(err),
			)
			return fmt.Errorf("%w %s: %w", ErrFeedLoad, src.Name(), err)
		}

		feeds = append(feeds, NewFeed(s.logger, ds))
	}

	for _, feed := range feeds {
		s.AddFeed(feed)
	}
	return nil
}

// AddFeed adds an indexed feed to the service and marks it ready.
func (s *Service) AddFeed(feed *Feed) {
	s.feedsLock.Lock()
	s.feeds = append(s.feeds, feed)
	s.feedsLock.Unlock()

	s.readyOnce.Do(func() {
		close(s.ready)
	})
}

// Ready is closed once the service has loaded its feeds.
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// RunQuery returns the upcoming departures matching the query across every feed, ordered by departure time.
func (s *Service) RunQuery(ctx context.Context, q departures.Query) ([]departures.Trip, error) {
	select {
	case <-s.ready:
	default:
		return nil, ErrNotReady
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now()

	s.feedsLock.RLock()
	defer s.feedsLock.RUnlock()

	var trips []departures.Trip
	for _, feed := range s.feeds {
		trips = append(trips, feed.Departures(q, now, s.window)...)
	}
	if len(s.feeds) > 1 {
		sort.SliceStable(trips, func(i, j int) bool {
			return trips[i].StopTime.Before(trips[j].StopTime)
		})
	}

	s.logger.Debug("query complete",
		zap.String("route_name", q.RouteName),
		zap.String("stop_name", q.StopName),
		zap.Stringer("direction", q.Direction),
		zap.Int("trip_count", len(trips)),
	)
	return trips, nil
}
