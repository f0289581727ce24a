// Package repository defines the learner leaderboard store and errors.
package repository

import (
	"context"
	"sort"
	"sync"
)

// Entry represents a leaderboard row.
type Entry struct {
	Rank         int    `json:"rank"`
	Principal    string `json:"principal"`
	TermsLearned uint64 `json:"terms_learned"`
}

// Store provides read/write access to the learner ranking state.
type Store interface {
	// RecordTermLearned bumps the principal's learned-term count by one.
	RecordTermLearned(ctx context.Context, principal string)

	// Rank returns the current rank and count for a principal.
	// Returns ErrNotFound if the principal has never marked a term.
	Rank(ctx context.Context, principal string) (Entry, error)

	// TopN returns the top-N entries ordered by terms learned desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of principals tracked.
	Count(ctx context.Context) int
}

// inMemoryStore implements Store with a counter map and a lazily rebuilt
// sorted index. Ordering: terms learned DESC, then principal ASC, so ranks
// are deterministic across reads.
type inMemoryStore struct {
	mu     sync.RWMutex
	counts map[string]uint64

	// sorted index cache, rebuilt on read after writes
	index []Entry
	dirty bool
}

// NewInMemoryStore creates an empty leaderboard store.
func NewInMemoryStore() Store {
	return &inMemoryStore{
		counts: make(map[string]uint64),
	}
}

func (s *inMemoryStore) RecordTermLearned(_ context.Context, principal string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[principal]++
	s.dirty = true
}

// rebuild refreshes the sorted index. Caller holds the write lock.
func (s *inMemoryStore) rebuild() {
	s.index = s.index[:0]
	for principal, count := range s.counts {
		s.index = append(s.index, Entry{Principal: principal, TermsLearned: count})
	}
	sort.Slice(s.index, func(i, j int) bool {
		if s.index[i].TermsLearned != s.index[j].TermsLearned {
			return s.index[i].TermsLearned > s.index[j].TermsLearned
		}
		return s.index[i].Principal < s.index[j].Principal
	})
	for i := range s.index {
		s.index[i].Rank = i + 1
	}
	s.dirty = false
}

func (s *inMemoryStore) Rank(_ context.Context, principal string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty {
		s.rebuild()
	}
	for _, e := range s.index {
		if e.Principal == principal {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

func (s *inMemoryStore) TopN(_ context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty {
		s.rebuild()
	}
	if n > len(s.index) {
		n = len(s.index)
	}
	out := make([]Entry, n)
	copy(out, s.index[:n])
	return out, nil
}

func (s *inMemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.counts)
}
