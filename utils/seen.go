package utils

// Seen is an ordered set of strings: it remembers insertion order
// and ignores repeats
type Seen struct {
	order []string
	index map[string]struct{}
}

// NewSeen creates a set pre-filled with items
func NewSeen(items ...string) *Seen {
	s := &Seen{index: make(map[string]struct{}, len(items))}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add returns true if item is new (not seen before), false if duplicate
func (s *Seen) Add(item string) bool {
	if _, exists := s.index[item]; exists {
		return false
	}
	s.index[item] = struct{}{}
	s.order = append(s.order, item)
	return true
}

// Has reports whether item was added
func (s *Seen) Has(item string) bool {
	_, ok := s.index[item]
	return ok
}

// Items returns the distinct items in first-seen order
func (s *Seen) Items() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of distinct items
func (s *Seen) Len() int {
	return len(s.order)
}
