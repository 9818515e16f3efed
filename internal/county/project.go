package county

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/countymap/internal/geo"
)

// MapPoint is a record placed on the canvas with its symbol radius.
type MapPoint struct {
	GEOID      string  `json:"geoid"`
	State      string  `json:"state"`
	Population int     `json:"population"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Radius     float64 `json:"radius"`
}

// Project places every record on the canvas. All points of one map must come
// from the same projector.
func Project(records []Record, proj geo.Projector, divisor float64) ([]MapPoint, error) {
	out := make([]MapPoint, 0, len(records))
	for _, r := range records {
		p, err := r.Point()
		if err != nil {
			return nil, eris.Wrapf(err, "county: project geoid %q", r.GEOID)
		}
		sp := proj.Project(p)
		out = append(out, MapPoint{
			GEOID:      r.GEOID,
			State:      r.State,
			Population: r.Population,
			X:          sp.X,
			Y:          sp.Y,
			Radius:     geo.SymbolRadius(r.Population, divisor),
		})
	}
	return out, nil
}
