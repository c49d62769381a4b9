// Package session keeps per-browser dashboard selections in memory.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/housedash/internal/query"
)

// CookieName is the cookie that carries the session id.
const CookieName = "housedash_session"

// Entry is one browser's dashboard state.
type Entry struct {
	ID        string
	Selection query.Selection
	CreatedAt time.Time
	LastSeen  time.Time
}

// Store is an in-memory session map with idle expiry.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// NewStore creates a store. Entries idle for longer than ttl are dropped by
// Sweep; when maxSize is reached the least recently seen entry is evicted.
func NewStore(ttl time.Duration, maxSize int) *Store {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &Store{
		entries: make(map[string]*Entry),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create starts a new session holding sel.
func (s *Store) Create(sel query.Selection) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.maxSize {
		s.evictOldest()
	}
	now := s.now()
	e := &Entry{ID: uuid.NewString(), Selection: sel, CreatedAt: now, LastSeen: now}
	s.entries[e.ID] = e
	return *e
}

// Get returns the session's selection and refreshes its idle timer.
// Expired or unknown ids report false.
func (s *Store) Get(id string) (query.Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return query.Selection{}, false
	}
	now := s.now()
	if s.expired(e, now) {
		delete(s.entries, id)
		return query.Selection{}, false
	}
	e.LastSeen = now
	return e.Selection, true
}

// Put replaces the selection of an existing session. It reports false if the
// session is unknown.
func (s *Store) Put(id string, sel query.Selection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return false
	}
	e.Selection = sel
	e.LastSeen = s.now()
	return true
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len returns the number of live entries, expired ones included until the
// next sweep.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep drops expired entries and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done. onSweep, if set, receives the
// number of removed entries after each pass.
func (s *Store) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) error {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			n := s.Sweep()
			if onSweep != nil {
				onSweep(n)
			}
		}
	}
}

func (s *Store) expired(e *Entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.LastSeen) > s.ttl
}

func (s *Store) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.entries {
		if oldestID == "" || e.LastSeen.Before(oldest) {
			oldestID, oldest = id, e.LastSeen
		}
	}
	if oldestID != "" {
		delete(s.entries, oldestID)
	}
}
