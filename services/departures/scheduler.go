package departures

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	// DefaultRefreshPeriod is how often every query is re-issued against the provider.
	DefaultRefreshPeriod = time.Hour * 24
	// DefaultTickPeriod is how often stale trips are pruned and the board rebuilt.
	DefaultTickPeriod = time.Minute
	// DefaultQueryTimeout bounds a single query against the provider.
	DefaultQueryTimeout = time.Second * 30
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithQueries sets the queries issued every refresh round, in display order.
func WithQueries(queries ...Query) Option {
	return func(s *Scheduler) {
		s.queries = append([]Query(nil), queries...)
	}
}

// WithRefreshPeriod sets the refresh cycle period.
func WithRefreshPeriod(period time.Duration) Option {
	return func(s *Scheduler) {
		if period > 0 {
			s.refreshPeriod = period
		}
	}
}

// WithTickPeriod sets the tick cycle period.
func WithTickPeriod(period time.Duration) Option {
	return func(s *Scheduler) {
		if period > 0 {
			s.tickPeriod = period
		}
	}
}

// WithQueryTimeout sets the deadline applied to each query.
func WithQueryTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) {
		if timeout > 0 {
			s.queryTimeout = timeout
		}
	}
}

// WithDeparturesPerRoute sets how many departures are displayed per route and terminus.
func WithDeparturesPerRoute(count int) Option {
	return func(s *Scheduler) {
		if count > 0 {
			s.departuresPerRoute = count
		}
	}
}

// WithPersister saves every completed round to the supplied persister.
func WithPersister(p Persister) Option {
	return func(s *Scheduler) {
		s.persister = p
	}
}

// WithClock replaces the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// Scheduler drives the refresh and tick cycles of a departure board.
// It is the only writer of its Store.
type Scheduler struct {
	logger    *zap.Logger
	store     *Store
	provider  Provider
	renderer  Renderer
	persister Persister

	queries            []Query
	refreshPeriod      time.Duration
	tickPeriod         time.Duration
	queryTimeout       time.Duration
	departuresPerRoute int
	now                func() time.Time

	cron      *cron.Cron
	skip      cron.JobWrapper
	ready     bool
	readyLock sync.Mutex
	// tracks refreshes started outside of cron
	running sync.WaitGroup

	tickLock sync.Mutex
}

// NewScheduler creates a new scheduler. No queries are issued until Ready is called.
func NewScheduler(logger *zap.Logger, store *Store, provider Provider, renderer Renderer, opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:             logger,
		store:              store,
		provider:           provider,
		renderer:           renderer,
		refreshPeriod:      DefaultRefreshPeriod,
		tickPeriod:         DefaultTickPeriod,
		queryTimeout:       DefaultQueryTimeout,
		departuresPerRoute: DefaultDeparturesPerRoute,
		now:                time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	cl := &cronLogger{logger: logger.Sugar()}
	s.cron = cron.New(cron.WithLogger(cl))
	s.skip = cron.SkipIfStillRunning(cl)
	return s
}

// Ready signals that the provider can be queried.
// The first call schedules both cycles and starts the first refresh in the background; later calls do nothing.
// The first refresh shares the scheduled refresh job, so the two never overlap.
func (s *Scheduler) Ready(ctx context.Context) {
	s.readyLock.Lock()
	defer s.readyLock.Unlock()

	if s.ready {
		s.logger.Debug("scheduler already running, ignoring ready")
		return
	}
	s.ready = true

	refreshJob := s.skip(cron.FuncJob(func() {
		s.Refresh(ctx)
	}))
	s.cron.Schedule(cron.Every(s.refreshPeriod), refreshJob)
	s.cron.Schedule(cron.Every(s.tickPeriod), s.skip(cron.FuncJob(s.Tick)))
	s.cron.Start()

	s.logger.Info("scheduler started",
		zap.Duration("refresh_period", s.refreshPeriod),
		zap.Duration("tick_period", s.tickPeriod),
		zap.Int("query_count", len(s.queries)),
	)

	s.running.Add(1)
	go func() {
		defer s.running.Done()
		refreshJob.Run()
	}()
}

// Stop halts both cycles. The returned context is done once any running cycle completes,
// including the first refresh started by Ready.
func (s *Scheduler) Stop() context.Context {
	cronCtx := s.cron.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-cronCtx.Done()
		s.running.Wait()
		cancel()
	}()
	return ctx
}

// Warm loads the trips of the last persisted round, if any, and displays them.
func (s *Scheduler) Warm(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	trips, err := s.persister.Load(ctx)
	if err != nil {
		return err
	}

	s.logger.Info("restored persisted trips",
		zap.Int("trip_count", len(trips)),
	)

	s.store.Restore(trips)
	s.Tick()
	return nil
}

// Refresh runs a single refresh round: the store is reset and every query is issued concurrently.
// Each response is merged and displayed as it arrives. Failed queries are logged and left until the next round.
// Refresh returns once every query has completed or timed out.
func (s *Scheduler) Refresh(ctx context.Context) {
	round := s.store.Reset()

	s.logger.Info("refreshing departures",
		zap.Uint64("round", uint64(round)),
		zap.Int("query_count", len(s.queries)),
	)

	var wg sync.WaitGroup
	for idx, q := range s.queries {
		wg.Add(1)
		go func(idx int, q Query) {
			defer wg.Done()
			s.runQuery(ctx, round, idx, q)
		}(idx, q)
	}
	wg.Wait()

	s.Tick()

	if s.persister == nil {
		return
	}
	if err := s.persister.Persist(ctx, s.store.Snapshot()); err != nil {
		s.logger.Warn("error persisting trips",
			zap.Uint64("round", uint64(round)),
			zap.Error(err),
		)
	}
}

type queryResult struct {
	trips []Trip
	err   error
}

func (s *Scheduler) runQuery(ctx context.Context, round Round, idx int, q Query) {
	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	results := make(chan queryResult, 1)
	go func() {
		trips, err := s.provider.RunQuery(queryCtx, q)
		results <- queryResult{trips, err}
	}()

	var res queryResult
	select {
	case res = <-results:
	case <-queryCtx.Done():
		res.err = queryCtx.Err()
	}

	if res.err != nil {
		s.logger.Warn("error running query",
			zap.String("route_name", q.RouteName),
			zap.String("stop_name", q.StopName),
			zap.Stringer("direction", q.Direction),
			zap.Error(res.err),
		)
		return
	}

	valid := make([]Trip, 0, len(res.trips))
	for _, t := range res.trips {
		if !t.Valid() {
			s.logger.Warn("dropping malformed trip",
				zap.String("route_name", t.RouteName),
				zap.String("stop_name", t.StopName),
				zap.Time("stop_time", t.StopTime),
			)
			continue
		}
		valid = append(valid, t)
	}

	err := s.store.Merge(Batch{
		Round: round,
		Index: idx,
		Trips: valid,
	})
	if err != nil {
		s.logger.Debug("discarding query results",
			zap.String("route_name", q.RouteName),
			zap.String("stop_name", q.StopName),
			zap.Uint64("round", uint64(round)),
			zap.Error(err),
		)
		return
	}

	s.logger.Debug("merged query results",
		zap.String("route_name", q.RouteName),
		zap.String("stop_name", q.StopName),
		zap.Int("trip_count", len(valid)),
	)

	s.Tick()
}

// Tick prunes departed trips and hands a freshly built board to the renderer.
// It never contacts the provider.
func (s *Scheduler) Tick() {
	s.tickLock.Lock()
	defer s.tickLock.Unlock()

	now := s.now()
	if removed := s.store.Prune(now); removed > 0 {
		s.logger.Debug("pruned departed trips",
			zap.Int("removed", removed),
			zap.Int("remaining", s.store.Len()),
		)
	}

	s.renderer.Render(Build(s.store.Snapshot(), s.departuresPerRoute, now))
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	logger *zap.SugaredLogger
}

// Info implements cron.Logger
func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

// Error implements cron.Logger
func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
