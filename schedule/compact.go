package schedule

// ToRanges merges the indices of occ into minimal contiguous ranges. occ must
// be ascending by index, as Expand produces it over ascending candidates.
func ToRanges(occ []Occurrence) []IndexRange {
	ranges := make([]IndexRange, 0)
	for _, o := range occ {
		if n := len(ranges); n > 0 && o.Index == ranges[n-1].To+1 {
			ranges[n-1].To = o.Index
			continue
		}
		ranges = append(ranges, IndexRange{From: o.Index, To: o.Index})
	}
	return ranges
}

// Indices flattens ranges back into the indices they cover
func Indices(ranges []IndexRange) []int {
	var out []int
	for _, r := range ranges {
		for i := r.From; i <= r.To; i++ {
			out = append(out, i)
		}
	}
	return out
}
