package metrics

import (
	"errors"
	"sync"
	"time"
)

// ErrAlreadyFinished is returned when Finish is called on a store that has
// already recorded its total elapsed time.
var ErrAlreadyFinished = errors.New("metrics: store already finished")

// Store aggregates the outcome of every request in a run. Successful HTTP
// transactions are bucketed by status code; transport failures are kept in a
// separate error list. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	buckets  map[int][]time.Duration
	errors   []error
	count    int64
	elapsed  time.Duration
	finished bool
}

// Snapshot is a point-in-time deep copy of a Store.
type Snapshot struct {
	Buckets  map[int][]time.Duration
	Errors   []error
	Elapsed  time.Duration
	Finished bool
}

// Snapshotter is anything that can produce a Snapshot. *Store implements it.
type Snapshotter interface {
	Snapshot() Snapshot
}

func NewStore() *Store {
	return &Store{buckets: make(map[int][]time.Duration)}
}

// RecordSuccess appends a completed HTTP transaction. Any status code counts,
// 4xx and 5xx included. Calls after Finish are ignored.
func (s *Store) RecordSuccess(code int, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.buckets[code] = append(s.buckets[code], latency)
	s.count++
}

// RecordFailure appends a transport failure. Calls after Finish are ignored.
func (s *Store) RecordFailure(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.errors = append(s.errors, err)
}

// Finish writes the total elapsed time and freezes the store.
func (s *Store) Finish(elapsed time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return ErrAlreadyFinished
	}
	if elapsed < 0 {
		elapsed = 0
	}
	s.elapsed = elapsed
	s.finished = true
	return nil
}

// Count returns the number of successful outcomes recorded so far.
func (s *Store) Count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// ErrorCount returns the number of transport failures recorded so far.
func (s *Store) ErrorCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.errors))
}

// Elapsed returns the total run time, zero until Finish is called.
func (s *Store) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *Store) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Snapshot returns a deep copy so callers can read without holding the lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	buckets := make(map[int][]time.Duration, len(s.buckets))
	for code, durations := range s.buckets {
		buckets[code] = append([]time.Duration(nil), durations...)
	}
	return Snapshot{
		Buckets:  buckets,
		Errors:   append([]error(nil), s.errors...),
		Elapsed:  s.elapsed,
		Finished: s.finished,
	}
}
