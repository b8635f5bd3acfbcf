package sets

// Set is a simple generic hash set for comparable keys.
// Usage: s := sets.New[string]("a","b"); s.Add("c"); if s.Has("b") {...}
type Set[T comparable] map[T]struct{}

// New creates a set pre-populated with the provided values.
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts value into the set.
func (s Set[T]) Add(v T) { s[v] = struct{}{} }

// Has returns true if v is present.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of members.
func (s Set[T]) Len() int { return len(s) }

// Values returns the members in map iteration order (unspecified).
func (s Set[T]) Values() []T {
	out := make([]T, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}

// CountIn returns how many of vals are members. Duplicates in vals are counted once.
func (s Set[T]) CountIn(vals []T) int {
	seen := make(Set[T], len(vals))
	n := 0
	for _, v := range vals {
		if seen.Has(v) {
			continue
		}
		seen.Add(v)
		if s.Has(v) {
			n++
		}
	}
	return n
}
