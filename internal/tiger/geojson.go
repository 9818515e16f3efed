package tiger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/countymap/internal/county"
)

// ReadGeoJSON decodes a GeoJSON FeatureCollection of county boundaries.
// Properties are matched case-insensitively against GEOID, STATEFP and NAME.
func ReadGeoJSON(r io.Reader) ([]county.Feature, error) {
	var fc geojson.FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, eris.Wrap(err, "tiger: decode geojson")
	}

	features := make([]county.Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f == nil {
			return nil, eris.Errorf("tiger: geojson feature %d is null", i)
		}
		props := upperKeys(f.Properties)
		cf := county.Feature{
			GEOID:    propString(props, FieldGEOID),
			StateFP:  propString(props, FieldStateFP),
			Name:     propString(props, FieldName),
			Geometry: f.Geometry,
		}
		if cf.GEOID == "" {
			cf.GEOID = f.ID
		}
		features = append(features, cf)
	}

	zap.L().Debug("tiger: geojson read",
		zap.String("component", "tiger.geojson"),
		zap.Int("features", len(features)),
	)
	return features, nil
}

// ReadShapes loads county features from a shapefile, a zipped shapefile, or
// a GeoJSON file, chosen by extension.
func ReadShapes(path string) ([]county.Feature, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return ReadCountyShapefile(path)
	case ".zip":
		dir, err := os.MkdirTemp("", "countymap-shapes-*")
		if err != nil {
			return nil, eris.Wrap(err, "tiger: create temp dir")
		}
		defer os.RemoveAll(dir) //nolint:errcheck

		shpPath, err := unpack(path, dir)
		if err != nil {
			return nil, eris.Wrapf(err, "tiger: read %s", path)
		}
		return ReadCountyShapefile(shpPath)
	case ".json", ".geojson":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "tiger: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return ReadGeoJSON(f)
	default:
		return nil, eris.Errorf("tiger: unsupported shape file %q", path)
	}
}

func upperKeys(props map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[strings.ToUpper(k)] = v
	}
	return out
}

func propString(props map[string]interface{}, key string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}
