// Package markset provides atomic keyed membership sets: presence markers
// keyed by (scope, member). The progress tracker uses it for per-stake term
// marks and governance uses it for per-proposal approver sets.
package markset

import (
	"context"
	"sort"
	"sync"
)

// Set records members under integer scopes with first-insert detection.
type Set interface {
	// MarkOnce atomically records member under scope.
	// Returns false if the member was already present; true if newly recorded.
	MarkOnce(ctx context.Context, scope uint64, member string) bool

	// Has reports whether member is recorded under scope.
	Has(ctx context.Context, scope uint64, member string) bool

	// CountIn returns the number of members recorded under scope.
	CountIn(ctx context.Context, scope uint64) int

	// MembersOf returns the members recorded under scope, sorted for
	// deterministic reads. Insertion order is not tracked.
	MembersOf(ctx context.Context, scope uint64) []string
}

// inMemorySet implements Set with a two-level map.
type inMemorySet struct {
	mu     sync.RWMutex
	scopes map[uint64]map[string]struct{}
}

// New creates an empty in-memory Set.
func New() Set {
	return &inMemorySet{
		scopes: make(map[uint64]map[string]struct{}),
	}
}

func (s *inMemorySet) MarkOnce(_ context.Context, scope uint64, member string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.scopes[scope]
	if !ok {
		members = make(map[string]struct{})
		s.scopes[scope] = members
	}
	if _, exists := members[member]; exists {
		return false
	}
	members[member] = struct{}{}
	return true
}

func (s *inMemorySet) Has(_ context.Context, scope uint64, member string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members, ok := s.scopes[scope]
	if !ok {
		return false
	}
	_, exists := members[member]
	return exists
}

func (s *inMemorySet) CountIn(_ context.Context, scope uint64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scopes[scope])
}

func (s *inMemorySet) MembersOf(_ context.Context, scope uint64) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := s.scopes[scope]
	out := make([]string, 0, len(members))
	for m := range members {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
