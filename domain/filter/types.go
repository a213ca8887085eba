package filter

import "gotally/domain/dataset"

// Spec is an equality-membership filter: rows whose Field value is one of Values.
// A spec with no Values constrains nothing.
type Spec struct {
	Field  string          `json:"field"`
	Values []dataset.Value `json:"values"`
}

// Active reports whether the spec constrains rows
func (s Spec) Active() bool {
	return s.Field != "" && len(s.Values) > 0
}

// Matches reports whether v is one of the selected values
func (s Spec) Matches(v dataset.Value) bool {
	for _, want := range s.Values {
		if want.Equal(v) {
			return true
		}
	}
	return false
}
