// Package county joins county boundary features with census population
// counts and derives the compact centroid dataset consumed by the map.
package county

import (
	"github.com/twpayne/go-geom"

	"github.com/sells-group/countymap/internal/geo"
)

// Feature is one county boundary from the shape collection.
type Feature struct {
	GEOID    string // 5-digit county FIPS (state + county)
	Name     string
	StateFP  string // 2-digit state FIPS
	Geometry geom.T
}

// PopulationRow is one row of the census population table before key
// normalization. Total is kept as text so malformed counts can be told apart
// from real ones.
type PopulationRow struct {
	RawID string
	Total string
}

// Record is one entry of the derived dataset.
type Record struct {
	GEOID      string `json:"geoid" csv:"geoid"`
	State      string `json:"state" csv:"state"`
	Centroid   string `json:"centroid" csv:"centroid"`
	Population int    `json:"population" csv:"population"`

	// HasPopulation is false when no usable population row matched. It is
	// not serialized; Population is 0 in that case.
	HasPopulation bool `json:"-" csv:"-"`
}

// Point parses the stored centroid.
func (r Record) Point() (geo.Point, error) {
	return geo.ParsePoint(r.Centroid)
}

// Region classifies the record's state.
func (r Record) Region() string {
	return geo.ClassifyState(r.State)
}
