// Package visitset implements the crawl's single source of truth for
// deduplication: the set of canonical URLs already admitted or being
// processed.
package visitset

import (
	"net/url"
	"sync"
)

// Set is a shared set of canonical URLs, safe for concurrent use. It is
// guarded by a single short-critical-section mutex rather than a
// reader/writer lock: the write ratio (inserts, removes) is high relative to
// standalone reads, so a plain Mutex is the better fit.
type Set struct {
	mu sync.Mutex
	m  map[string]*url.URL
}

// New returns an empty Set.
func New() *Set {
	return &Set{m: make(map[string]*url.URL)}
}

// TryInsert atomically adds u (keyed by its string form, which callers are
// expected to have already canonicalized) and reports whether it was newly
// inserted. Inserting an already-present URL is a no-op that returns false.
func (s *Set) TryInsert(u *url.URL) bool {
	key := u.String()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[key]; ok {
		return false
	}
	s.m[key] = u
	return true
}

// Remove unconditionally deletes u from the set. It is used only by the
// redirect policy when relocating a permanently-moved URL.
func (s *Set) Remove(u *url.URL) {
	key := u.String()
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

// Contains reports whether u is currently present in the set.
func (s *Set) Contains(u *url.URL) bool {
	key := u.String()
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[key]
	return ok
}

// Drain consumes and returns the final set as a map keyed by canonical
// string form. Intended for use once the crawl has finished.
func (s *Set) Drain() map[string]*url.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.m
	s.m = make(map[string]*url.URL)
	return out
}
