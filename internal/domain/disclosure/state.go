package disclosure

import "sort"

// State is the set of currently open section indices
type State struct {
	open  map[int]struct{}
	count int
}

// NewState returns an all-collapsed state for count sections
func NewState(count int) *State {
	return &State{
		open:  make(map[int]struct{}),
		count: count,
	}
}

// Count returns the number of sections the state covers
func (s *State) Count() int {
	return s.count
}

// Toggle flips membership of index. Indices outside [0, Count) are flipped
// too but never show up as an open card.
func (s *State) Toggle(index int) {
	if _, ok := s.open[index]; ok {
		delete(s.open, index)
		return
	}
	s.open[index] = struct{}{}
}

// ExpandAll opens every section
func (s *State) ExpandAll() {
	s.open = make(map[int]struct{}, s.count)
	for i := 0; i < s.count; i++ {
		s.open[i] = struct{}{}
	}
}

// CollapseAll closes every section
func (s *State) CollapseAll() {
	s.open = make(map[int]struct{})
}

// Reset collapses everything and rebinds the state to a new section count
func (s *State) Reset(count int) {
	s.count = count
	s.CollapseAll()
}

// IsOpen reports whether index is expanded
func (s *State) IsOpen(index int) bool {
	_, ok := s.open[index]
	return ok
}

// Open returns the open indices in ascending order
func (s *State) Open() []int {
	indices := make([]int, 0, len(s.open))
	for i := range s.open {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

// Visible returns the open indices that map to a real section
func (s *State) Visible() []int {
	visible := make([]int, 0, len(s.open))
	for _, i := range s.Open() {
		if i >= 0 && i < s.count {
			visible = append(visible, i)
		}
	}
	return visible
}
