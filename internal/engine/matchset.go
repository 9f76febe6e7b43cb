package engine

import "sort"

// MatchSet is one match dimension of a rule: either universal ("any", or
// an empty list on the device) or an enumerated set of object names.
// Treating the two universal spellings as one value keeps the sentinel
// out of the superset and intersection logic.
type MatchSet struct {
	universal bool
	values    map[string]struct{}
}

// NewMatchSet builds a MatchSet from a raw value list. A nil/empty list,
// or any member equal to "any", yields the universal set.
func NewMatchSet(values []string) MatchSet {
	if len(values) == 0 {
		return MatchSet{universal: true}
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "any" {
			return MatchSet{universal: true}
		}
		if v != "" {
			set[v] = struct{}{}
		}
	}
	if len(set) == 0 {
		return MatchSet{universal: true}
	}
	return MatchSet{values: set}
}

// Universal reports whether the set matches every possible value.
func (s MatchSet) Universal() bool {
	return s.universal
}

// Covers reports whether s matches at least everything other matches.
func (s MatchSet) Covers(other MatchSet) bool {
	if s.universal {
		return true
	}
	if other.universal {
		return false
	}
	for v := range other.values {
		if _, ok := s.values[v]; !ok {
			return false
		}
	}
	return true
}

// Intersects reports whether some value matches both sets.
func (s MatchSet) Intersects(other MatchSet) bool {
	if s.universal || other.universal {
		return true
	}
	small, large := s.values, other.values
	if len(large) < len(small) {
		small, large = large, small
	}
	for v := range small {
		if _, ok := large[v]; ok {
			return true
		}
	}
	return false
}

// Values returns the enumerated members, sorted. Nil when universal.
func (s MatchSet) Values() []string {
	if s.universal {
		return nil
	}
	out := make([]string, 0, len(s.values))
	for v := range s.values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
