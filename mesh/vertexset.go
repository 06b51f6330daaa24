package mesh

// VertexSet is an immutable set of global vertex indices
type VertexSet struct {
	member []bool
	count  int
}

// NewVertexSet builds a set over n vertices from the union of the given lists.
// Indices outside [0, n) are ignored
func NewVertexSet(n int, lists ...[]int) *VertexSet {
	s := &VertexSet{member: make([]bool, n)}
	for _, list := range lists {
		for _, v := range list {
			if v < 0 || v >= n || s.member[v] {
				continue
			}
			s.member[v] = true
			s.count++
		}
	}
	return s
}

// Contains reports whether v is in the set
func (s *VertexSet) Contains(v int) bool {
	if s == nil || v < 0 || v >= len(s.member) {
		return false
	}
	return s.member[v]
}

// Len returns the number of members
func (s *VertexSet) Len() int {
	if s == nil {
		return 0
	}
	return s.count
}

// Sorted returns the members in ascending order
func (s *VertexSet) Sorted() []int {
	if s == nil {
		return nil
	}
	out := make([]int, 0, s.count)
	for v, in := range s.member {
		if in {
			out = append(out, v)
		}
	}
	return out
}
