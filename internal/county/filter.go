package county

import "github.com/sells-group/countymap/internal/geo"

// FilterContiguous keeps the records whose state belongs on the contiguous-US
// map, preserving order. The input slice is not modified.
func FilterContiguous(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if geo.InScope(r.State) {
			out = append(out, r)
		}
	}
	return out
}

// CountByRegion tallies records per geo region constant.
func CountByRegion(records []Record) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Region()]++
	}
	return counts
}
