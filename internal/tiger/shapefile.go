package tiger

import (
	"strings"
	"unicode/utf8"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/sells-group/countymap/internal/county"
)

// ReadCountyShapefile reads a TIGER/Line county shapefile into features in
// file order. Records whose shape is not a polygon keep a nil geometry so
// the join reports them instead of silently dropping a county.
func ReadCountyShapefile(shpPath string) ([]county.Feature, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "tiger: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fieldIdx := make(map[string]int)
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToUpper(name)] = i
	}

	geoidIdx, ok1 := fieldIdx[FieldGEOID]
	stateIdx, ok2 := fieldIdx[FieldStateFP]
	nameIdx, ok3 := fieldIdx[FieldName]
	if !ok1 || !ok2 || !ok3 {
		return nil, eris.Errorf("tiger: required shapefile fields (%s, %s, %s) not found in %s",
			FieldGEOID, FieldStateFP, FieldName, shpPath)
	}

	var features []county.Feature
	var noGeom int

	for reader.Next() {
		_, shape := reader.Shape()

		f := county.Feature{
			GEOID:   decodeAttr(reader.Attribute(geoidIdx)),
			StateFP: decodeAttr(reader.Attribute(stateIdx)),
			Name:    decodeAttr(reader.Attribute(nameIdx)),
		}
		if mp := ShapeToGeom(shape); mp != nil {
			f.Geometry = mp
		} else {
			noGeom++
		}

		features = append(features, f)
	}

	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "tiger: read shapefile %s", shpPath)
	}

	zap.L().Info("tiger: shapefile read",
		zap.String("component", "tiger.shapefile"),
		zap.String("path", shpPath),
		zap.Int("features", len(features)),
		zap.Int("without_geometry", noGeom),
	)

	return features, nil
}

// decodeAttr trims DBF padding and decodes Latin-1 text written by older
// TIGER vintages.
func decodeAttr(s string) string {
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	if utf8.ValidString(s) {
		return s
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return decoded
}
