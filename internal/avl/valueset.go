package avl

// setIndexThreshold is the size above which a value set maintains a position
// map for O(1) membership tests.
const setIndexThreshold = 16

type setEntry[V comparable] struct {
	v    V
	dead bool
}

// valueSet is an insertion-ordered set.
//
// Small sets are plain slices. Large sets keep a position map and mark removed
// entries dead, compacting once more than half of the entries are dead.
type valueSet[V comparable] struct {
	entries []setEntry[V]
	pos     map[V]int
	dead    int
}

func (s *valueSet[V]) len() int {
	return len(s.entries) - s.dead
}

func (s *valueSet[V]) indexOf(v V) int {
	if s.pos != nil {
		if i, ok := s.pos[v]; ok {
			return i
		}
		return -1
	}
	// Small sets never hold dead entries.
	for i := range s.entries {
		if s.entries[i].v == v {
			return i
		}
	}
	return -1
}

func (s *valueSet[V]) contains(v V) bool {
	return s.indexOf(v) >= 0
}

func (s *valueSet[V]) add(v V) bool {
	if s.indexOf(v) >= 0 {
		return false
	}
	s.entries = append(s.entries, setEntry[V]{v: v})
	if s.pos != nil {
		s.pos[v] = len(s.entries) - 1
	} else if len(s.entries) > setIndexThreshold {
		s.buildIndex()
	}
	return true
}

func (s *valueSet[V]) remove(v V) bool {
	i := s.indexOf(v)
	if i < 0 {
		return false
	}
	if s.pos == nil {
		copy(s.entries[i:], s.entries[i+1:])
		s.entries[len(s.entries)-1] = setEntry[V]{}
		s.entries = s.entries[:len(s.entries)-1]
		return true
	}
	s.entries[i].dead = true
	delete(s.pos, v)
	s.dead++
	if s.dead > len(s.entries)/2 {
		s.compact()
	}
	return true
}

func (s *valueSet[V]) compact() {
	j := 0
	for _, e := range s.entries {
		if !e.dead {
			s.entries[j] = e
			j++
		}
	}
	clear(s.entries[j:])
	s.entries = s.entries[:j]
	s.dead = 0
	if j <= setIndexThreshold {
		s.pos = nil
		return
	}
	s.buildIndex()
}

func (s *valueSet[V]) buildIndex() {
	s.pos = make(map[V]int, len(s.entries))
	for i, e := range s.entries {
		if !e.dead {
			s.pos[e.v] = i
		}
	}
}

// values returns a copy of the live values in insertion order.
func (s *valueSet[V]) values() []V {
	out := make([]V, 0, s.len())
	for _, e := range s.entries {
		if !e.dead {
			out = append(out, e.v)
		}
	}
	return out
}

func (s *valueSet[V]) each(yield func(V) bool) bool {
	for _, e := range s.entries {
		if e.dead {
			continue
		}
		if !yield(e.v) {
			return false
		}
	}
	return true
}
