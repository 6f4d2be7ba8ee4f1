package departures

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Persister saves the trips of the last complete refresh round so a restarted board has something to show
// before the feed finishes loading.
type Persister interface {
	Persist(ctx context.Context, trips []Trip) error
	Load(ctx context.Context) ([]Trip, error)
}

// InMemoryPersister satisfies the requirements of the 'Persister' interface in memory.
type InMemoryPersister struct {
	trips []Trip
	lock  sync.Mutex
}

// NewInMemoryPersister creates a new instance of an in-memory persister
func NewInMemoryPersister() *InMemoryPersister {
	return &InMemoryPersister{}
}

// Persist keeps a copy of the supplied trips.
func (imp *InMemoryPersister) Persist(ctx context.Context, trips []Trip) error {
	imp.lock.Lock()
	defer imp.lock.Unlock()

	imp.trips = append([]Trip(nil), trips...)
	return nil
}

// Load returns a copy of whatever was last persisted.
func (imp *InMemoryPersister) Load(ctx context.Context) ([]Trip, error) {
	imp.lock.Lock()
	defer imp.lock.Unlock()

	return append([]Trip(nil), imp.trips...), nil
}

// SQLPersister satisfies the requirements of the 'Persister' interface in a SQL DB
type SQLPersister struct {
	logger *zap.Logger
	db     *sql.DB
}

const (
	createTripTableQuery = `CREATE TABLE IF NOT EXISTS trip(
		position INTEGER PRIMARY KEY,
		route_name TEXT NOT NULL,
		stop_name TEXT NOT NULL,
		terminus TEXT NOT NULL,
		stop_time INTEGER NOT NULL
	);`
	deleteTripsQuery = `DELETE FROM trip;`
	insertTripQuery  = `INSERT INTO trip(position, route_name, stop_name, terminus, stop_time) VALUES (?, ?, ?, ?, ?)`
	selectTripsQuery = `SELECT route_name, stop_name, terminus, stop_time FROM trip ORDER BY position;`
)

// NewSQLPersister creates a new persister backed by a SQL DB
func NewSQLPersister(logger *zap.Logger, db *sql.DB) *SQLPersister {
	return &SQLPersister{
		logger: logger,
		db:     db,
	}
}

// Setup creates the tables used by this persister if they don't already exist.
func (p *SQLPersister) Setup(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, createTripTableQuery)
	return err
}

// Persist replaces the saved trips with the supplied set.
func (p *SQLPersister) Persist(ctx context.Context, trips []Trip) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, deleteTripsQuery); err != nil {
		tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, insertTripQuery)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for idx, t := range trips {
		_, err = stmt.ExecContext(ctx, idx, t.RouteName, t.StopName, t.Terminus, t.StopTime.UnixNano())
		if err != nil {
			p.logger.Info("unable to save trip",
				zap.String("route_name", t.RouteName),
				zap.String("stop_name", t.StopName),
				zap.Error(err),
			)
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Load retrieves the saved trips in the order they were persisted.
func (p *SQLPersister) Load(ctx context.Context) ([]Trip, error) {
	rows, err := p.db.QueryContext(ctx, selectTripsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		var t Trip
		var stopTime int64

		if err := rows.Scan(&t.RouteName, &t.StopName, &t.Terminus, &stopTime); err != nil {
			return nil, err
		}

		t.StopTime = time.Unix(0, stopTime)
		trips = append(trips, t)
	}

	return trips, rows.Err()
}
