package market

import "sync"

// ExchangeSet is an ordered, deduplicated set of connected exchange ids.
type ExchangeSet struct {
	mu      sync.RWMutex
	ids     []string
	present map[string]struct{}
}

// NewExchangeSet creates an empty set.
func NewExchangeSet() *ExchangeSet {
	return &ExchangeSet{
		present: make(map[string]struct{}),
	}
}

// Add inserts id if absent. Returns true if the set changed.
func (s *ExchangeSet) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.present[id]; ok {
		return false
	}
	s.present[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Remove deletes id if present. Returns true if the set changed.
func (s *ExchangeSet) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.present[id]; !ok {
		return false
	}
	delete(s.present, id)
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return true
}

// Reset replaces the membership wholesale, preserving the order of ids.
// Duplicates in ids are collapsed to their first occurrence.
func (s *ExchangeSet) Reset(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = s.ids[:0]
	s.present = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.present[id]; ok {
			continue
		}
		s.present[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
}

// Contains reports whether id is in the set.
func (s *ExchangeSet) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.present[id]
	return ok
}

// List returns the ids in insertion order.
func (s *ExchangeSet) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of connected exchanges.
func (s *ExchangeSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
