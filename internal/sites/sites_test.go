package sites

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/countymap/internal/county"
	"github.com/sells-group/countymap/internal/geo"
)

func makeSites(specs ...Site) []Site {
	for i := range specs {
		specs[i].Index = i
		if specs[i].State == "" {
			specs[i].State = "01"
		}
	}
	return specs
}

func site(lon, lat float64, pop int) Site {
	return Site{Point: geo.Point{Lon: lon, Lat: lat}, Population: pop}
}

func siteWithID(lon, lat float64, pop int, geoid string) Site {
	s := site(lon, lat, pop)
	s.GEOID = geoid
	return s
}

func TestPrepare(t *testing.T) {
	records := []county.Record{
		{GEOID: "20055", State: "20", Centroid: "-100.7,37.9", Population: 38470},
		{GEOID: "02020", State: "02", Centroid: "-149.5,61.2", Population: 291247},
		{GEOID: "15003", State: "15", Centroid: "-157.9,21.4", Population: 1016508},
		{GEOID: "72001", State: "72", Centroid: "-66.6,18.1", Population: 17000},
		{GEOID: "56021", State: "56", Centroid: "-104.6,41.3", Population: 100863},
	}

	sites, err := Prepare(records)
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "20055", sites[0].GEOID)
	assert.Equal(t, 0, sites[0].Index)
	assert.Equal(t, "56021", sites[1].GEOID)
	assert.Equal(t, 1, sites[1].Index)
	assert.Equal(t, geo.Point{Lon: -104.6, Lat: 41.3}, sites[1].Point)
}

func TestPrepare_BadCentroid(t *testing.T) {
	_, err := Prepare([]county.Record{{GEOID: "20055", State: "20", Centroid: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "20055")
}

func TestClosestPopulation_SplitLocations(t *testing.T) {
	sites := makeSites(
		site(-5, 0, 1000),
		siteWithID(0, 0, 2000, "L"),
		site(5, 0, 8000),
		site(25, 0, 4000),
		siteWithID(30, 0, 16000, "R"),
		site(35, 0, 32000),
	)

	totals, err := ClosestPopulation(sites, []string{"L", "R"})
	require.NoError(t, err)
	assert.Equal(t, []int{11000, 52000}, totals)
}

func TestClosestPopulation_TieGoesToFirst(t *testing.T) {
	sites := makeSites(
		siteWithID(-5, 0, 10, "W"),
		site(0, 0, 100),
		siteWithID(5, 0, 10, "E"),
	)

	totals, err := ClosestPopulation(sites, []string{"W", "E"})
	require.NoError(t, err)
	assert.Equal(t, []int{110, 10}, totals)
}

func TestClosestPopulation_UnknownOrAmbiguous(t *testing.T) {
	sites := makeSites(siteWithID(0, 0, 1, "A"), siteWithID(1, 0, 1, "A"))

	_, err := ClosestPopulation(sites, []string{"B"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = ClosestPopulation(sites, []string{"A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matches 2 counties")
}

func TestBest_SamePopulation(t *testing.T) {
	sites := makeSites(site(-5, 0, 1000), site(0, 0, 1000), site(5, 0, 1000))

	res, err := Best(context.Background(), sites, 1, Options{Squared: true})
	require.NoError(t, err)
	assert.Equal(t, []geo.Point{{Lon: 0, Lat: 0}}, res.Points())
	assert.Equal(t, int64(3), res.Evaluated)
}

func TestBest_DifferentPopulation(t *testing.T) {
	sites := makeSites(site(-5, 0, 1000), site(0, 0, 1000), site(5, 0, 5000000))

	res, err := Best(context.Background(), sites, 1, Options{Squared: true})
	require.NoError(t, err)
	assert.Equal(t, []geo.Point{{Lon: 5, Lat: 0}}, res.Points())
}

func TestBest_TwoClusters(t *testing.T) {
	sites := makeSites(
		site(-5, 0, 1000), site(0, 0, 1000), site(5, 0, 1000),
		site(25, 0, 1000), site(30, 0, 1000), site(35, 0, 1000),
	)

	for _, squared := range []bool{true, false} {
		res, err := Best(context.Background(), sites, 2, Options{
			Squared:     squared,
			Concurrency: 3,
			ChunkSize:   4,
		})
		require.NoError(t, err)
		assert.Equal(t, []geo.Point{{Lon: 0, Lat: 0}, {Lon: 30, Lat: 0}}, res.Points())
		assert.Equal(t, int64(15), res.Evaluated)
	}
}

func TestBest_TieKeepsFirstCombination(t *testing.T) {
	sites := makeSites(site(0, 0, 0), site(1, 0, 0), site(2, 0, 0), site(3, 0, 0))

	res, err := Best(context.Background(), sites, 2, Options{Concurrency: 2, ChunkSize: 1})
	require.NoError(t, err)
	require.Len(t, res.Sites, 2)
	assert.Equal(t, 0, res.Sites[0].Index)
	assert.Equal(t, 1, res.Sites[1].Index)
	assert.Equal(t, 0.0, res.Cost)
}

func TestBest_InvalidK(t *testing.T) {
	sites := makeSites(site(0, 0, 1))

	_, err := Best(context.Background(), sites, 0, Options{})
	assert.Error(t, err)

	_, err = Best(context.Background(), sites, 2, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestBest_BadIndex(t *testing.T) {
	sites := []Site{site(0, 0, 1), site(1, 1, 1)}
	sites[1].Index = 5

	_, err := Best(context.Background(), sites, 1, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has index 5")
}

func TestBest_Cancelled(t *testing.T) {
	sites := makeSites(site(0, 0, 1), site(1, 1, 1), site(2, 2, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Best(ctx, sites, 1, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}

func TestCombinations(t *testing.T) {
	c := newCombinations(4, 2)
	first := c.take(4)
	rest := c.take(10)

	assert.Equal(t, [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}}, first)
	assert.Equal(t, [][]int{{1, 3}, {2, 3}}, rest)
	assert.Empty(t, c.take(1))
}

func TestSplitChunk(t *testing.T) {
	chunk := [][]int{{0}, {1}, {2}, {3}, {4}}
	parts := splitChunk(chunk, 2)
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], 3)
	assert.Len(t, parts[1], 2)

	assert.Len(t, splitChunk(chunk[:1], 8), 1)
}

func TestDistanceCache(t *testing.T) {
	sites := makeSites(site(0, 0, 1), site(0, 1, 4))
	c := newDistanceCache(sites)

	d := geo.DistanceKM(sites[0].Point, sites[1].Point)
	assert.InDelta(t, d*d*4, c.entries[0*2+1], 1e-6)
	assert.InDelta(t, d*d*1, c.entries[1*2+0], 1e-6)
	assert.Equal(t, 0.0, c.entries[0])
}
