package selection

// CurrentVersion is the schema version written by Save
const CurrentVersion = 1

// Set holds the user's chosen metric fields.
// Lists may overlap; order is the user's order.
type Set struct {
	Version       int      `json:"version"`
	SumFields     []string `json:"sum_fields"`
	CountFields   []string `json:"count_fields"`
	AverageFields []string `json:"average_fields"`
}

// Empty returns a set with all three lists empty
func Empty() Set {
	return Set{
		Version:       CurrentVersion,
		SumFields:     []string{},
		CountFields:   []string{},
		AverageFields: []string{},
	}
}

// IsEmpty reports whether no field is selected in any list
func (s Set) IsEmpty() bool {
	return len(s.SumFields) == 0 && len(s.CountFields) == 0 && len(s.AverageFields) == 0
}

// Fields returns every referenced field once, in sum, average, count order
func (s Set) Fields() []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]string{s.SumFields, s.AverageFields, s.CountFields} {
		for _, f := range list {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// Reconcile keeps only the names present in columns, preserving order.
// The receiver is not modified.
func (s Set) Reconcile(columns []string) Set {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	return Set{
		Version:       s.Version,
		SumFields:     keep(s.SumFields, present),
		CountFields:   keep(s.CountFields, present),
		AverageFields: keep(s.AverageFields, present),
	}
}

func keep(fields []string, present map[string]bool) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if present[f] {
			out = append(out, f)
		}
	}
	return out
}
