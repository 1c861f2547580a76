// Package store holds the in-memory copy of the six remote collections and
// replaces it wholesale on every reload.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vessel-ops/internal/metrics"
	"github.com/ukydev/vessel-ops/internal/models"
	"golang.org/x/sync/errgroup"
)

// ErrFetch marks a reload that failed because a collection could not be listed.
var ErrFetch = errors.New("fetch failure")

// ReloadTimeout bounds reloads that run detached from the request that
// triggered them.
const ReloadTimeout = time.Minute

// Source lists one collection from the remote API.
type Source interface {
	List(ctx context.Context, coll models.Collection) ([]models.Record, error)
}

// Snapshot is an immutable view of all collections at one reload.
//
// LastReload and ReloadDuration describe the reload that produced
// Collections; LastAttempt moves on every reload, failed or not.
type Snapshot struct {
	Collections     map[models.Collection][]models.Record
	LastReload      time.Time
	ReloadDuration  time.Duration
	LastAttempt     time.Time
	LastReloadError string
}

// Records returns the records of one collection, never nil.
func (s Snapshot) Records(coll models.Collection) []models.Record {
	if r, ok := s.Collections[coll]; ok {
		return r
	}
	return []models.Record{}
}

// Loaded reports whether at least one reload has succeeded.
func (s Snapshot) Loaded() bool {
	return s.Collections != nil
}

// Store keeps the last good snapshot.
type Store struct {
	source Source

	mu       sync.RWMutex
	snapshot Snapshot

	inFlight atomic.Int32
}

// New creates an empty store reading from source.
func New(source Source) *Store {
	return &Store{source: source}
}

// Snapshot returns the current snapshot. Callers must not modify it.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Reload lists all collections concurrently. The new snapshot is published
// only when every list call succeeds; otherwise the previous collections stay
// in place and the error is recorded on the snapshot.
//
// Reloads are not sequenced. Overlapping calls each publish when they finish,
// so a slower, older reload can replace a newer one.
func (s *Store) Reload(ctx context.Context) error {
	if n := s.inFlight.Add(1); n > 1 {
		metrics.RecordReloadOverlap()
		log.WithField("in_flight", n).Warn("Reload started while another reload is in flight")
	}
	defer s.inFlight.Add(-1)

	start := time.Now()
	results := make([][]models.Record, len(models.Collections))

	var g errgroup.Group
	for i, coll := range models.Collections {
		g.Go(func() error {
			records, err := s.source.List(ctx, coll)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrFetch, coll, err)
			}
			results[i] = records
			return nil
		})
	}
	err := g.Wait()
	duration := time.Since(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if err != nil {
		log.WithError(err).Error("Reload failed, keeping previous records")
		next := s.snapshot
		next.LastAttempt = now
		next.LastReloadError = err.Error()
		s.snapshot = next
		metrics.RecordReload(false, duration)
		return err
	}

	next := Snapshot{
		LastReload:     now,
		ReloadDuration: duration,
		LastAttempt:    now,
	}
	next.Collections = make(map[models.Collection][]models.Record, len(models.Collections))
	fields := log.Fields{"duration": duration}
	for i, coll := range models.Collections {
		next.Collections[coll] = results[i]
		fields[string(coll)] = len(results[i])
		metrics.RecordCollectionSize(string(coll), len(results[i]))
	}
	s.snapshot = next
	metrics.RecordReload(true, duration)
	log.WithFields(fields).Info("Reloaded records")
	return nil
}
