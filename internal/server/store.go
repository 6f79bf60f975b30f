package server

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/tabimport/internal/importer"
)

// ErrNotFound is returned for unknown table ids.
var ErrNotFound = errors.New("table not found")

// Entry is an imported table held by the Store.
type Entry struct {
	ID       string
	Source   string
	Created  time.Time
	Result   *importer.Result
	Warnings []string
}

// Store keeps imported tables in memory, keyed by uuid.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*Entry
	now    func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{tables: make(map[string]*Entry), now: time.Now}
}

// Put stores res under a fresh id.
func (s *Store) Put(source string, res *importer.Result) *Entry {
	e := &Entry{
		ID:       uuid.NewString(),
		Source:   source,
		Created:  s.now(),
		Result:   res,
		Warnings: res.Stats.Warnings(),
	}
	s.mu.Lock()
	s.tables[e.ID] = e
	s.mu.Unlock()
	return e
}

// Get returns the entry for id.
func (s *Store) Get(id string) (*Entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.tables[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// List returns all entries, oldest first.
func (s *Store) List() []*Entry {
	s.mu.RLock()
	out := make([]*Entry, 0, len(s.tables))
	for _, e := range s.tables {
		out = append(out, e)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}

// Delete removes id from the store.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[id]; !ok {
		return ErrNotFound
	}
	delete(s.tables, id)
	return nil
}

// Len returns the number of stored tables.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables)
}
