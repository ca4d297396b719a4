package category

import "sync"

// AllID is the pseudo-category that resets the selection.
const AllID = "all"

// Selection models the pill filter: an empty selection means "all
// categories". Toggling an id narrows the view to it; toggling the same id
// again removes it, returning to "all" when nothing is left selected.
type Selection struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewSelection starts with no selection, meaning all categories visible.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Toggle flips one category in or out of the selection. The "all" pseudo-id
// clears the selection entirely.
func (s *Selection) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == AllID {
		s.ids = make(map[string]struct{})
		return
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
}

// IsEmpty reports whether the selection means "all".
func (s *Selection) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids) == 0
}

// Has reports whether the category is explicitly selected.
func (s *Selection) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Visible filters the registry down to the selected categories; an empty
// selection returns every category, never an empty view.
func (s *Selection) Visible(all []Category) []Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.ids) == 0 {
		out := make([]Category, len(all))
		copy(out, all)
		return out
	}

	var out []Category
	for _, c := range all {
		if _, ok := s.ids[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}
