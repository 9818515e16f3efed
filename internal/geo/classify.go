// Package geo provides the coordinate codec, centroid extraction, state
// classification, map projection, and distance helpers for county points.
package geo

import (
	"strconv"
	"strings"
)

// Region classification constants.
const (
	RegionContiguous = "contiguous"
	RegionAlaska     = "alaska"
	RegionHawaii     = "hawaii"
	RegionTerritory  = "territory"
	RegionUnknown    = "unknown"
)

// State FIPS codes that bound the contiguous map.
const (
	alaskaFIPS    = 2
	hawaiiFIPS    = 15
	lastStateFIPS = 56 // Wyoming; everything above is a territory
)

// ClassifyState returns the region for a 2-digit state FIPS code.
// Rules:
//   - alaska: 02
//   - hawaii: 15
//   - territory: above 56 (Puerto Rico 72, Guam 66, ...)
//   - unknown: not an integer
//   - contiguous: everything else, 56 included
func ClassifyState(state string) string {
	code, err := strconv.Atoi(strings.TrimSpace(state))
	if err != nil {
		return RegionUnknown
	}
	switch {
	case code == alaskaFIPS:
		return RegionAlaska
	case code == hawaiiFIPS:
		return RegionHawaii
	case code > lastStateFIPS:
		return RegionTerritory
	default:
		return RegionContiguous
	}
}

// InScope reports whether a state belongs on the contiguous-US map. Only
// Alaska, Hawaii and territories are excluded; a code that is not an integer
// stays in scope.
func InScope(state string) bool {
	switch ClassifyState(state) {
	case RegionAlaska, RegionHawaii, RegionTerritory:
		return false
	default:
		return true
	}
}
