package departures

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrStaleRound is returned if a batch from a previous refresh round is merged.
	ErrStaleRound = errors.New("batch belongs to a previous round")
)

// Round identifies a single refresh round of the store.
type Round uint64

// Batch is the set of trips returned by a single query during a refresh round.
type Batch struct {
	Round Round
	// Index is the position of the query in the configured query list.
	Index int
	Trips []Trip
}

type storedTrip struct {
	Trip

	index int
}

// Store holds the upcoming trips known to the board.
// It is rebuilt every refresh round and pruned between rounds.
type Store struct {
	trips []storedTrip
	round Round

	lock sync.Mutex
}

// NewStore creates a new, empty trip store.
func NewStore() *Store {
	return &Store{}
}

// Reset clears all trips and begins a new round.
// Batches tagged with any earlier round are rejected by Merge from this point on.
func (s *Store) Reset() Round {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.trips = nil
	s.round++
	return s.round
}

// Merge adds the trips of the supplied batch to the store. No deduplication is performed.
// The batch is placed after every trip from a query with an index less than or equal to its own,
// so the store order follows the query configuration regardless of when responses arrive.
func (s *Store) Merge(b Batch) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if b.Round != s.round {
		return ErrStaleRound
	}
	if len(b.Trips) < 1 {
		return nil
	}

	pos := len(s.trips)
	for idx, t := range s.trips {
		if t.index > b.Index {
			pos = idx
			break
		}
	}

	merged := make([]storedTrip, 0, len(s.trips)+len(b.Trips))
	merged = append(merged, s.trips[:pos]...)
	for _, t := range b.Trips {
		merged = append(merged, storedTrip{Trip: t, index: b.Index})
	}
	merged = append(merged, s.trips[pos:]...)

	s.trips = merged
	return nil
}

// Prune removes every trip that is not strictly after now, returning the number removed.
func (s *Store) Prune(now time.Time) int {
	s.lock.Lock()
	defer s.lock.Unlock()

	kept := s.trips[:0]
	for _, t := range s.trips {
		if t.StopTime.After(now) {
			kept = append(kept, t)
		}
	}

	removed := len(s.trips) - len(kept)
	for idx := len(kept); idx < len(s.trips); idx++ {
		s.trips[idx] = storedTrip{}
	}
	s.trips = kept
	return removed
}

// Snapshot returns a copy of the current contents of the store.
func (s *Store) Snapshot() []Trip {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(s.trips) < 1 {
		return nil
	}

	ret := make([]Trip, len(s.trips))
	for idx, t := range s.trips {
		ret[idx] = t.Trip
	}
	return ret
}

// Restore seeds the store with previously persisted trips.
// The trips are part of the current round and are cleared by the next Reset.
func (s *Store) Restore(trips []Trip) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.trips = make([]storedTrip, 0, len(trips))
	for _, t := range trips {
		s.trips = append(s.trips, storedTrip{Trip: t, index: -1})
	}
}

// Len returns the number of trips currently held.
func (s *Store) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.trips)
}
