package intake

// seenSet is a capped set of transaction signatures with oldest-first
// eviction. Mutated only by the intake loop, so it needs no locking.
type seenSet struct {
	cap   int
	m     map[string]struct{}
	order []string
	head  int
}

func newSeenSet(capacity int) *seenSet {
	if capacity < 1 {
		capacity = 1
	}
	return &seenSet{
		cap:   capacity,
		m:     make(map[string]struct{}, capacity),
		order: make([]string, 0, capacity),
	}
}

// Add records the signature. Returns false if it was already present.
func (s *seenSet) Add(sig string) bool {
	if _, ok := s.m[sig]; ok {
		return false
	}

	if len(s.m) >= s.cap {
		oldest := s.order[s.head]
		delete(s.m, oldest)
		s.order[s.head] = sig
		s.head = (s.head + 1) % s.cap
	} else {
		s.order = append(s.order, sig)
	}

	s.m[sig] = struct{}{}
	return true
}

// Len reports the number of signatures currently tracked.
func (s *seenSet) Len() int {
	return len(s.m)
}
