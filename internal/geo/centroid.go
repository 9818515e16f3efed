package geo

import (
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Centroider reduces a county geometry to a single representative point.
type Centroider interface {
	Centroid(g geom.T) (Point, error)
}

// GeometryError reports a missing or malformed polygon geometry.
type GeometryError struct {
	Reason string
	Err    error
}

func (e *GeometryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geo: geometry: %s: %v", e.Reason, e.Err)
	}
	return "geo: geometry: " + e.Reason
}

func (e *GeometryError) Unwrap() error { return e.Err }

// PlanarCentroider computes the area-weighted planar centroid of a Polygon or
// MultiPolygon in lon/lat space. Zero-area rings fall back to the center of
// the geometry's bounding box.
type PlanarCentroider struct{}

// Centroid implements Centroider.
func (PlanarCentroider) Centroid(g geom.T) (Point, error) {
	if g == nil {
		return Point{}, &GeometryError{Reason: "missing geometry"}
	}

	switch g.(type) {
	case *geom.Polygon, *geom.MultiPolygon:
	default:
		return Point{}, &GeometryError{Reason: fmt.Sprintf("unsupported geometry type %T", g)}
	}

	if len(g.FlatCoords()) == 0 {
		return Point{}, &GeometryError{Reason: "empty geometry"}
	}
	if g.Layout().Stride() < 2 {
		return Point{}, &GeometryError{Reason: "geometry has fewer than two dimensions"}
	}

	c, err := xy.Centroid(g)
	if err != nil {
		return Point{}, &GeometryError{Reason: "centroid", Err: err}
	}

	p := Point{Lon: c.X(), Lat: c.Y()}
	if !p.Finite() {
		b := g.Bounds()
		p = Point{
			Lon: (b.Min(0) + b.Max(0)) / 2,
			Lat: (b.Min(1) + b.Max(1)) / 2,
		}
	}
	if !p.Finite() {
		return Point{}, &GeometryError{Reason: "non-finite coordinates"}
	}

	return p, nil
}
