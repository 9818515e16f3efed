// Package tiger reads Census TIGER/Line county boundaries, either as the
// published shapefile or as a GeoJSON feature collection, and turns them into
// county features.
package tiger

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Product is a national TIGER/Line boundary layer.
type Product struct {
	Dir   string // directory under TIGER{year}/, e.g. "COUNTY"
	Layer string // file name suffix, e.g. "county"
}

var (
	// County holds one polygon per county or county equivalent.
	County = Product{Dir: "COUNTY", Layer: "county"}
	// State holds one polygon per state and territory.
	State = Product{Dir: "STATE", Layer: "state"}
)

// Attribute names of the county product.
const (
	FieldGEOID   = "GEOID"
	FieldStateFP = "STATEFP"
	FieldName    = "NAME"
)

// National shapefiles are published from this vintage onwards.
const firstVintage = 2008

// LookupProduct resolves a layer name such as "county" (any case).
func LookupProduct(layer string) (Product, error) {
	for _, p := range []Product{County, State} {
		if strings.EqualFold(p.Layer, layer) {
			return p, nil
		}
	}
	return Product{}, eris.Errorf("tiger: unknown product %q", layer)
}

// ArchiveName is the published ZIP name: tl_{year}_us_{layer}.zip.
func (p Product) ArchiveName(year int) string {
	return fmt.Sprintf("tl_%d_us_%s.zip", year, p.Layer)
}

// DownloadURL is where the Census Bureau publishes p for the given vintage.
func DownloadURL(p Product, year int) string {
	return fmt.Sprintf("https://www2.census.gov/geo/tiger/TIGER%d/%s/%s", year, p.Dir, p.ArchiveName(year))
}

// CheckVintage rejects years with no national TIGER/Line release.
func CheckVintage(year int) error {
	if year < firstVintage {
		return eris.Errorf("tiger: no national shapefiles before %d (got %d)", firstVintage, year)
	}
	return nil
}
