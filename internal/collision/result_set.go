package collision

// ResultSet maps hash values to the first input that produced them and
// remembers insertion order. A worker owns its local set until it publishes
// it; the aggregator owns the global set. Neither is safe for concurrent use.
type ResultSet struct {
	index map[HashValue]Input
	order []HashValue
}

// NewResultSet returns an empty set sized for capacity entries.
func NewResultSet(capacity int) *ResultSet {
	if capacity < 0 {
		capacity = 0
	}
	return &ResultSet{
		index: make(map[HashValue]Input, capacity),
		order: make([]HashValue, 0, capacity),
	}
}

// Insert records in as the first input for h. If h is already present the
// set is unchanged and the existing input is returned with false.
func (s *ResultSet) Insert(h HashValue, in Input) (Input, bool) {
	if first, ok := s.index[h]; ok {
		return first, false
	}
	s.index[h] = in
	s.order = append(s.order, h)
	return in, true
}

// Lookup returns the first input recorded for h.
func (s *ResultSet) Lookup(h HashValue) (Input, bool) {
	in, ok := s.index[h]
	return in, ok
}

// Len returns the number of distinct hash values.
func (s *ResultSet) Len() int { return len(s.order) }

// Each calls fn for every entry in insertion order.
func (s *ResultSet) Each(fn func(h HashValue, first Input)) {
	for _, h := range s.order {
		fn(h, s.index[h])
	}
}
