package county

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/countymap/internal/geo"
)

// offsetProjector shifts lon/lat by a constant so results are easy to check.
type offsetProjector struct{}

func (offsetProjector) Project(p geo.Point) geo.ScreenPoint {
	return geo.ScreenPoint{X: p.Lon + 100, Y: 50 - p.Lat}
}

func TestProject(t *testing.T) {
	records := []Record{
		{GEOID: "a", State: "20", Centroid: "-99.5,38", Population: 5625},
		{GEOID: "b", State: "35", Centroid: "-106,35", Population: 0},
	}

	points, err := Project(records, offsetProjector{}, 75)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "a", points[0].GEOID)
	assert.InDelta(t, 0.5, points[0].X, 1e-9)
	assert.InDelta(t, 12.0, points[0].Y, 1e-9)
	assert.InDelta(t, 1.0, points[0].Radius, 1e-12)

	assert.Equal(t, 0.0, points[1].Radius)
}

func TestProject_BadCentroid(t *testing.T) {
	_, err := Project([]Record{{GEOID: "z", Centroid: "-99.5"}}, offsetProjector{}, 75)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `geoid "z"`)
}

func TestProject_Albers(t *testing.T) {
	records := []Record{{GEOID: "c", Centroid: "-96.6,38.7", Population: 100}}

	points, err := Project(records, geo.NewAlbers(1300, 975, 610), 75)
	require.NoError(t, err)
	assert.InDelta(t, 487.5, points[0].X, 1e-9)
	assert.InDelta(t, 305.0, points[0].Y, 1e-9)
}
