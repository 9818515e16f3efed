package county

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/countymap/internal/geo"
)

// StateTally counts processed counties per state FIPS code.
type StateTally map[string]int

// StateCount is one StateTally entry.
type StateCount struct {
	StateFP  string
	Counties int
}

// Sorted returns the tally ordered by state code.
func (t StateTally) Sorted() []StateCount {
	out := make([]StateCount, 0, len(t))
	for st, n := range t {
		out = append(out, StateCount{StateFP: st, Counties: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StateFP < out[j].StateFP })
	return out
}

// Diagnostics are the side outputs of a join. They never influence Records.
type Diagnostics struct {
	Features     int
	States       int
	NoPopulation int
	StateTally   StateTally
}

// Result is the output of Join.
type Result struct {
	Records     []Record
	Diagnostics Diagnostics
}

// Join derives one Record per feature, in input order. The first geometry
// failure aborts the whole join. Counties without a usable population row get
// Population 0 and are counted in Diagnostics.NoPopulation.
func Join(features []Feature, pops Populations, centroider geo.Centroider) (*Result, error) {
	log := zap.L().With(zap.String("component", "county.join"))

	res := &Result{
		Records: make([]Record, 0, len(features)),
		Diagnostics: Diagnostics{
			Features:   len(features),
			StateTally: make(StateTally),
		},
	}
	seen := make(map[string]struct{}, len(features))

	for i, f := range features {
		if _, dup := seen[f.GEOID]; dup {
			return nil, eris.Errorf("county: duplicate geoid %q at feature %d", f.GEOID, i)
		}
		seen[f.GEOID] = struct{}{}

		centroid, err := centroider.Centroid(f.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "county: centroid for geoid %q (%s)", f.GEOID, f.Name)
		}

		res.Diagnostics.StateTally[f.StateFP]++

		population, ok := pops.Lookup(f.GEOID)
		if !ok {
			res.Diagnostics.NoPopulation++
		}

		log.Debug("county joined",
			zap.String("geoid", f.GEOID),
			zap.String("name", f.Name),
			zap.String("statefp", f.StateFP),
			zap.Int("population", population),
		)

		res.Records = append(res.Records, Record{
			GEOID:         f.GEOID,
			State:         f.StateFP,
			Centroid:      geo.FormatPoint(centroid),
			Population:    population,
			HasPopulation: ok,
		})
	}

	res.Diagnostics.States = len(res.Diagnostics.StateTally)
	return res, nil
}

// Log writes the join diagnostics as log lines.
func (d Diagnostics) Log(log *zap.Logger) {
	for _, sc := range d.StateTally.Sorted() {
		log.Info("state counties",
			zap.String("statefp", sc.StateFP),
			zap.Int("counties", sc.Counties),
		)
	}
	log.Info("join complete",
		zap.Int("features", d.Features),
		zap.Int("states", d.States),
		zap.Int("no_population", d.NoPopulation),
	)
}
