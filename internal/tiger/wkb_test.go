package tiger

import (
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

// clockwise square (shapefile outer ring orientation)
func outerRing(minX, minY, size float64) []shp.Point {
	return []shp.Point{
		{X: minX, Y: minY},
		{X: minX, Y: minY + size},
		{X: minX + size, Y: minY + size},
		{X: minX + size, Y: minY},
		{X: minX, Y: minY},
	}
}

// counter-clockwise square (shapefile hole orientation)
func innerRing(minX, minY, size float64) []shp.Point {
	return []shp.Point{
		{X: minX, Y: minY},
		{X: minX + size, Y: minY},
		{X: minX + size, Y: minY + size},
		{X: minX, Y: minY + size},
		{X: minX, Y: minY},
	}
}

func polygonShape(rings ...[]shp.Point) *shp.Polygon {
	p := &shp.Polygon{NumParts: int32(len(rings))}
	for _, r := range rings {
		p.Parts = append(p.Parts, int32(len(p.Points)))
		p.Points = append(p.Points, r...)
	}
	p.NumPoints = int32(len(p.Points))
	return p
}

func TestShapeToGeom_SinglePolygon(t *testing.T) {
	mp := ShapeToGeom(polygonShape(outerRing(-80, 25, 1)))
	require.NotNil(t, mp)
	assert.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, SRID, mp.SRID())
}

func TestShapeToGeom_HoleAttachesToShell(t *testing.T) {
	mp := ShapeToGeom(polygonShape(outerRing(0, 0, 10), innerRing(4, 4, 2)))
	require.NotNil(t, mp)
	require.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, 2, mp.Polygon(0).NumLinearRings())
}

func TestShapeToGeom_MultiPart(t *testing.T) {
	mp := ShapeToGeom(polygonShape(outerRing(-80, 25, 1), outerRing(-82, 26, 1)))
	require.NotNil(t, mp)
	assert.Equal(t, 2, mp.NumPolygons())
}

func TestShapeToGeom_Unsupported(t *testing.T) {
	assert.Nil(t, ShapeToGeom(nil))
	assert.Nil(t, ShapeToGeom(&shp.Point{X: 1, Y: 2}))
	assert.Nil(t, ShapeToGeom(&shp.Polygon{}))
}

func TestShapeToGeom_DegenerateRingSkipped(t *testing.T) {
	shape := polygonShape([]shp.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 0}})
	assert.Nil(t, ShapeToGeom(shape))
}

func TestSignedArea(t *testing.T) {
	ccw := []float64{0, 0, 1, 0, 1, 1, 0, 1, 0, 0}
	cw := []float64{0, 0, 0, 1, 1, 1, 1, 0, 0, 0}
	assert.InDelta(t, 2.0, signedArea(ccw), 1e-12)
	assert.InDelta(t, -2.0, signedArea(cw), 1e-12)
}

func TestPointWKB_RoundTrip(t *testing.T) {
	data, err := PointWKB(-99.89793552425651, 38.08749756724239)
	require.NoError(t, err)

	g, err := ewkb.Unmarshal(data)
	require.NoError(t, err)
	pt, ok := g.(*geom.Point)
	require.True(t, ok)
	assert.Equal(t, -99.89793552425651, pt.X())
	assert.Equal(t, 38.08749756724239, pt.Y())
	assert.Equal(t, SRID, pt.SRID())
}

func TestEncodeWKB_Nil(t *testing.T) {
	data, err := EncodeWKB(nil)
	require.NoError(t, err)
	assert.Nil(t, data)
}
