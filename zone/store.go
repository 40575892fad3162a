package zone

import "sync/atomic"

// Store holds the current zone set. Readers get an immutable snapshot;
// refreshes swap the whole slice atomically so a concurrent reader never
// observes a partially updated list.
type Store struct {
	zones atomic.Pointer[[]Zone]
}

// NewStore creates a Store seeded with the given zones.
func NewStore(zones []Zone) *Store {
	s := &Store{}
	s.Swap(zones)
	return s
}

// Swap replaces the entire zone set.
func (s *Store) Swap(zones []Zone) {
	cp := make([]Zone, len(zones))
	copy(cp, zones)
	s.zones.Store(&cp)
}

// All returns the current snapshot in stored order. Earlier zones take
// priority during entry checks, so order is preserved from the source.
func (s *Store) All() []Zone {
	return *s.zones.Load()
}

// Symbols returns the distinct symbols covered by active zones, in
// first-seen order. The candle loop polls exactly these instruments.
func (s *Store) Symbols() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, z := range s.All() {
		if !z.Active() {
			continue
		}
		if _, ok := seen[z.Symbol]; ok {
			continue
		}
		seen[z.Symbol] = struct{}{}
		out = append(out, z.Symbol)
	}
	return out
}
