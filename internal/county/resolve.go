package county

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/countymap/internal/geo"
)

// Resolve returns the first record whose stored centroid text equals the
// formatted target. Matching is exact: only a centroid previously produced
// for that county resolves. ok is false when nothing matches.
func Resolve(target geo.Point, records []Record) (Record, bool) {
	key := geo.FormatPoint(target)
	for _, r := range records {
		if r.Centroid == key {
			return r, true
		}
	}
	return Record{}, false
}

// ResolveAll resolves each target in order. Targets without a match are
// returned in missing.
func ResolveAll(targets []geo.Point, records []Record) (found []Record, missing []geo.Point) {
	for _, t := range targets {
		if r, ok := Resolve(t, records); ok {
			found = append(found, r)
		} else {
			missing = append(missing, t)
		}
	}
	return found, missing
}

// ByGEOID returns the first record with the given geoid.
func ByGEOID(geoid string, records []Record) (Record, bool) {
	for _, r := range records {
		if r.GEOID == geoid {
			return r, true
		}
	}
	return Record{}, false
}

// ResolveNearest returns the record whose centroid is closest to target and
// no more than maxKM away. Ties keep the earlier record.
func ResolveNearest(target geo.Point, records []Record, maxKM float64) (Record, bool, error) {
	best := -1
	bestKM := math.Inf(1)

	for i, r := range records {
		p, err := r.Point()
		if err != nil {
			return Record{}, false, eris.Wrapf(err, "county: resolve nearest: geoid %q", r.GEOID)
		}
		d := geo.DistanceKM(target, p)
		if d <= maxKM && d < bestKM {
			best, bestKM = i, d
		}
	}

	if best < 0 {
		return Record{}, false, nil
	}
	return records[best], true, nil
}
