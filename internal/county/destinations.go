package county

// DestinationSet is a named list of counties to highlight on a map.
type DestinationSet struct {
	Name   string
	GEOIDs []string
}

// DestinationSets are the published best-location results: one, two, and
// three destinations under the squared and plain distance objectives. Sets
// are keyed by GEOID so they match whatever centroid the dataset was built
// with.
var DestinationSets = []DestinationSet{
	{Name: "one", GEOIDs: []string{"20083"}},
	{Name: "two", GEOIDs: []string{"47185", "32023"}},
	{Name: "three", GEOIDs: []string{"39155", "32023", "22087"}},
	{Name: "one-nosquare", GEOIDs: []string{"20189"}},
	{Name: "two-nosquare", GEOIDs: []string{"06071", "21207"}},
	{Name: "three-nosquare", GEOIDs: []string{"42073", "06071", "22063"}},
}

// DestinationSetByName looks up a set by name.
func DestinationSetByName(name string) (DestinationSet, bool) {
	for _, s := range DestinationSets {
		if s.Name == name {
			return s, true
		}
	}
	return DestinationSet{}, false
}

// Resolve returns the records for the set's counties in set order, carrying
// the dataset's own centroids. GEOIDs with no record come back in missing.
func (s DestinationSet) Resolve(records []Record) (found []Record, missing []string) {
	for _, id := range s.GEOIDs {
		r, ok := ByGEOID(id, records)
		if !ok {
			missing = append(missing, id)
			continue
		}
		found = append(found, r)
	}
	return found, missing
}
