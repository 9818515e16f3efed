package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
)

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Orb returns the point as an orb.Point ([lon, lat]).
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// Finite reports whether both components are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.Lon) && !math.IsInf(p.Lon, 0) &&
		!math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0)
}

func (p Point) String() string {
	return FormatPoint(p)
}

// ParseError reports coordinate text that is not a "<lon>,<lat>" pair.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("geo: parse point %q: %s", e.Input, e.Reason)
}

// FormatPoint renders p as "<lon>,<lat>" using the shortest decimal text
// that parses back to the same float64. No rounding is applied.
func FormatPoint(p Point) string {
	return formatCoord(p.Lon) + "," + formatCoord(p.Lat)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParsePoint parses "<lon>,<lat>" text produced by FormatPoint. The input is
// split on the first comma; both halves must be finite numbers with no
// surrounding whitespace.
func ParsePoint(s string) (Point, error) {
	lonText, latText, ok := strings.Cut(s, ",")
	if !ok {
		return Point{}, &ParseError{Input: s, Reason: "missing comma"}
	}

	lon, err := parseCoord(lonText)
	if err != nil {
		return Point{}, &ParseError{Input: s, Reason: "longitude: " + err.Error()}
	}
	lat, err := parseCoord(latText)
	if err != nil {
		return Point{}, &ParseError{Input: s, Reason: "latitude: " + err.Error()}
	}

	return Point{Lon: lon, Lat: lat}, nil
}

func parseCoord(s string) (float64, error) {
	if s == "" {
		return 0, eris.New("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Errorf("%q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, eris.Errorf("%q is not finite", s)
	}
	return v, nil
}
