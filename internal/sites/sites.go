// Package sites answers placement questions over the county dataset: which
// destination each county's population is closest to, and which k county
// centroids minimise population-weighted travel distance.
package sites

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/countymap/internal/county"
	"github.com/sells-group/countymap/internal/geo"
)

// Site is an in-scope county with a parsed centroid and a dense index.
type Site struct {
	Index      int
	GEOID      string
	State      string
	Point      geo.Point
	Population int
}

// Prepare keeps the records on the contiguous map and numbers them 0..n-1
// in input order.
func Prepare(records []county.Record) ([]Site, error) {
	sites := make([]Site, 0, len(records))
	for _, r := range records {
		if !geo.InScope(r.State) {
			continue
		}
		p, err := r.Point()
		if err != nil {
			return nil, eris.Wrapf(err, "sites: centroid of %s", r.GEOID)
		}
		sites = append(sites, Site{
			Index:      len(sites),
			GEOID:      r.GEOID,
			State:      r.State,
			Point:      p,
			Population: r.Population,
		})
	}
	return sites, nil
}

// ClosestPopulation sums each site's population onto the nearest of the
// destinations named by GEOID. Ties go to the destination listed first.
// Every GEOID must match exactly one site.
func ClosestPopulation(sites []Site, geoids []string) ([]int, error) {
	dests := make([]geo.Point, len(geoids))
	for i, id := range geoids {
		var found int
		for _, s := range sites {
			if s.GEOID == id {
				dests[i] = s.Point
				found++
			}
		}
		switch {
		case found == 0:
			return nil, eris.Errorf("sites: destination %q not found", id)
		case found > 1:
			return nil, eris.Errorf("sites: destination %q matches %d counties", id, found)
		}
	}

	totals := make([]int, len(geoids))
	if len(dests) == 0 {
		return totals, nil
	}
	for _, s := range sites {
		best := 0
		bestDist := geo.DistanceKM(dests[0], s.Point)
		for i := 1; i < len(dests); i++ {
			if d := geo.DistanceKM(dests[i], s.Point); d < bestDist {
				best, bestDist = i, d
			}
		}
		totals[best] += s.Population
	}
	return totals, nil
}
