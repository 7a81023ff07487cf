package tasklist

// Selection is an ordered set of task ids picked for a bulk operation. The
// zero value is an empty selection. It is not safe for concurrent use.
type Selection struct {
	order []string
	set   map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{set: make(map[string]struct{})}
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.set[id]
	return ok
}

// Len is the number of selected ids.
func (s *Selection) Len() int { return len(s.order) }

// Toggle adds id if absent and removes it otherwise.
func (s *Selection) Toggle(id string) {
	if s.Has(id) {
		s.remove(id)
		return
	}
	s.add(id)
}

// SelectAll adds every id in ids, keeping existing picks.
func (s *Selection) SelectAll(ids []string) {
	for _, id := range ids {
		if !s.Has(id) {
			s.add(id)
		}
	}
}

// ToggleAll clears the selection when every id in ids is already selected,
// and selects them all otherwise.
func (s *Selection) ToggleAll(ids []string) {
	all := len(ids) > 0
	for _, id := range ids {
		if !s.Has(id) {
			all = false
			break
		}
	}
	if all {
		s.Clear()
		return
	}
	s.SelectAll(ids)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.order = nil
	s.set = nil
}

// Retain drops ids not in keep, e.g. after a refresh removed tasks.
func (s *Selection) Retain(keep []string) {
	alive := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		alive[id] = struct{}{}
	}
	for _, id := range s.IDs() {
		if _, ok := alive[id]; !ok {
			s.remove(id)
		}
	}
}

// IDs returns the selected ids in the order they were picked.
func (s *Selection) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Selection) add(id string) {
	if s.set == nil {
		s.set = make(map[string]struct{})
	}
	s.set[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *Selection) remove(id string) {
	delete(s.set, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
