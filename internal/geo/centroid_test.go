package geo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func square(minX, minY, size float64) *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, []float64{
		minX, minY,
		minX, minY + size,
		minX + size, minY + size,
		minX + size, minY,
		minX, minY,
	}, []int{10})
}

func TestPlanarCentroider_Polygon(t *testing.T) {
	p, err := PlanarCentroider{}.Centroid(square(-100, 38, 2))
	require.NoError(t, err)
	assert.InDelta(t, -99.0, p.Lon, 1e-9)
	assert.InDelta(t, 39.0, p.Lat, 1e-9)
}

func TestPlanarCentroider_MultiPolygonIsAreaWeighted(t *testing.T) {
	mp := geom.NewMultiPolygon(geom.XY)
	require.NoError(t, mp.Push(square(0, 0, 2))) // area 4, centroid (1,1)
	require.NoError(t, mp.Push(square(10, 0, 1))) // area 1, centroid (10.5,0.5)

	p, err := PlanarCentroider{}.Centroid(mp)
	require.NoError(t, err)
	assert.InDelta(t, (4*1.0+1*10.5)/5, p.Lon, 1e-9)
	assert.InDelta(t, (4*1.0+1*0.5)/5, p.Lat, 1e-9)
}

func TestPlanarCentroider_Deterministic(t *testing.T) {
	g := square(-80.25, 25.5, 0.75)
	a, err := PlanarCentroider{}.Centroid(g)
	require.NoError(t, err)
	b, err := PlanarCentroider{}.Centroid(g)
	require.NoError(t, err)
	assert.Equal(t, FormatPoint(a), FormatPoint(b))
}

func TestPlanarCentroider_ZeroAreaIsFinite(t *testing.T) {
	line := geom.NewPolygonFlat(geom.XY, []float64{
		0, 0,
		2, 0,
		4, 0,
		0, 0,
	}, []int{8})

	p, err := PlanarCentroider{}.Centroid(line)
	require.NoError(t, err)
	assert.True(t, p.Finite())
	assert.InDelta(t, 0.0, p.Lat, 1e-9)
}

func TestPlanarCentroider_Errors(t *testing.T) {
	tests := []struct {
		name string
		g    geom.T
	}{
		{name: "nil geometry", g: nil},
		{name: "point geometry", g: geom.NewPointFlat(geom.XY, []float64{1, 2})},
		{name: "empty polygon", g: geom.NewPolygon(geom.XY)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanarCentroider{}.Centroid(tt.g)
			require.Error(t, err)
			var ge *GeometryError
			assert.True(t, errors.As(err, &ge))
		})
	}
}
