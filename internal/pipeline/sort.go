package pipeline

// Direction is the order applied by a sort.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// SortSpec names the column a view is sorted by. The zero value means unsorted.
type SortSpec struct {
	Key       string    `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// IsZero reports whether no sort key is set.
func (s SortSpec) IsZero() bool { return s.Key == "" }

// Request applies a column activation. Activating the current ascending key
// flips it to descending; any other activation sorts ascending by key.
// Repeated activation never returns to the unsorted state.
func (s SortSpec) Request(key string) SortSpec {
	if s.Key == key && s.Direction == Ascending {
		return SortSpec{Key: key, Direction: Descending}
	}
	return SortSpec{Key: key, Direction: Ascending}
}
