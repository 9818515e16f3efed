package tiger

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

type testCounty struct {
	geoid, statefp, name string
	rings                [][]shp.Point
}

func writeCountyShapefile(t *testing.T, counties []testCounty) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tl_2024_us_county.shp")
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("STATEFP", 2),
		shp.StringField("GEOID", 5),
		shp.StringField("NAME", 40),
	}))

	for _, c := range counties {
		poly := shp.Polygon(*shp.NewPolyLine(c.rings))
		row := int(w.Write(&poly))
		require.NoError(t, w.WriteAttribute(row, 0, c.statefp))
		require.NoError(t, w.WriteAttribute(row, 1, c.geoid))
		require.NoError(t, w.WriteAttribute(row, 2, c.name))
	}
	w.Close()

	return path
}

func TestReadCountyShapefile(t *testing.T) {
	path := writeCountyShapefile(t, []testCounty{
		{geoid: "20055", statefp: "20", name: "Finney", rings: [][]shp.Point{outerRing(-101, 37.7, 0.6)}},
		{geoid: "35013", statefp: "35", name: "Do\xf1a Ana", rings: [][]shp.Point{outerRing(-107.3, 32, 1), outerRing(-105, 31, 0.1)}},
	})

	features, err := ReadCountyShapefile(path)
	require.NoError(t, err)
	require.Len(t, features, 2)

	assert.Equal(t, "20055", features[0].GEOID)
	assert.Equal(t, "20", features[0].StateFP)
	assert.Equal(t, "Finney", features[0].Name)
	mp, ok := features[0].Geometry.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 1, mp.NumPolygons())

	assert.Equal(t, "35013", features[1].GEOID)
	assert.Equal(t, "Doña Ana", features[1].Name)
	mp, ok = features[1].Geometry.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 2, mp.NumPolygons())
}

func TestReadCountyShapefile_MissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.shp")
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("CBSAFP", 5)}))
	poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{outerRing(0, 0, 1)}))
	w.Write(&poly)
	w.Close()

	_, err = ReadCountyShapefile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required shapefile fields")
}

func TestReadCountyShapefile_NotFound(t *testing.T) {
	_, err := ReadCountyShapefile(filepath.Join(t.TempDir(), "missing.shp"))
	assert.Error(t, err)
}

func TestDecodeAttr(t *testing.T) {
	assert.Equal(t, "Finney", decodeAttr("Finney\x00\x00"))
	assert.Equal(t, "Finney", decodeAttr("  Finney  "))
	assert.Equal(t, "Doña Ana", decodeAttr("Doña Ana"))
	assert.Equal(t, "Doña Ana", decodeAttr("Do\xf1a Ana"))
}
