// Package sessiontest provides an in-memory session.Store for tests.
package sessiontest

import (
	"context"
	"sync"
	"time"

	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
	"github.com/gatehouse-dev/gatehouse/pkg/session"
)

// MemStore implements session.Store on a map. It is safe for concurrent use.
type MemStore struct {
	mu   sync.Mutex
	recs map[kernel.SessionID]*session.Record

	// Err, when set, is returned by every operation.
	Err error
}

var _ session.Store = (*MemStore)(nil)

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{recs: make(map[kernel.SessionID]*session.Record)}
}

func (s *MemStore) Save(_ context.Context, rec *session.Record, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	cp := *rec
	s.recs[rec.ID] = &cp
	return nil
}

func (s *MemStore) Find(_ context.Context, id kernel.SessionID) (*session.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	rec, ok := s.recs[id]
	if !ok {
		return nil, session.ErrSessionNotFound()
	}
	cp := *rec
	return &cp, nil
}

func (s *MemStore) Delete(_ context.Context, id kernel.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.recs, id)
	return nil
}

// Get returns a copy of the stored record, or nil when absent.
func (s *MemStore) Get(id kernel.SessionID) *session.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

// SetExpiry rewrites the record's expiry in place.
func (s *MemStore) SetExpiry(id kernel.SessionID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.recs[id]; ok {
		rec.ExpiresAt = at
	}
}

// Expire backdates the record so the next lookup sees it as lapsed.
func (s *MemStore) Expire(id kernel.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.recs[id]; ok {
		rec.ExpiresAt = time.Now().Add(-time.Minute)
	}
}
