package county

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Default census table columns.
const (
	DefaultIDColumn         = "id"
	DefaultPopulationColumn = "Total population"
)

const countyKeyLen = 5

// Population is a parsed population count. Valid is false when the source
// text was not a base-10 integer.
type Population struct {
	Total int
	Valid bool
}

// Populations maps a 5-digit county key to its population.
type Populations map[string]Population

// CountyKey returns the join key for a census identifier such as
// "0500000US01001": its last five characters. Identifiers shorter than five
// characters are returned unchanged.
func CountyKey(rawID string) string {
	if len(rawID) <= countyKeyLen {
		return rawID
	}
	return rawID[len(rawID)-countyKeyLen:]
}

// LoadPopulations builds the population lookup. Later rows overwrite earlier
// rows with the same key. Malformed counts are kept as invalid entries.
func LoadPopulations(rows []PopulationRow) Populations {
	pops := make(Populations, len(rows))
	var malformed int

	for _, row := range rows {
		key := CountyKey(row.RawID)
		total, err := strconv.Atoi(strings.TrimSpace(row.Total))
		if err != nil {
			malformed++
			pops[key] = Population{}
			continue
		}
		pops[key] = Population{Total: total, Valid: true}
	}

	if malformed > 0 {
		zap.L().Warn("county: malformed population values",
			zap.String("component", "county.population"),
			zap.Int("rows", malformed),
		)
	}

	return pops
}

// Lookup returns the population for a county key and whether a usable
// (present and well-formed) value exists.
func (p Populations) Lookup(geoid string) (int, bool) {
	pop, ok := p[geoid]
	if !ok || !pop.Valid {
		return 0, false
	}
	return pop.Total, true
}

// PopulationRowsFromTable picks the identifier and population columns out of
// a parsed table. Both columns must be present in the header.
func PopulationRowsFromTable(header []string, rows [][]string, idCol, popCol string) ([]PopulationRow, error) {
	idIdx := columnIndex(header, idCol)
	popIdx := columnIndex(header, popCol)
	if idIdx < 0 || popIdx < 0 {
		return nil, eris.Errorf("county: population table missing required columns (%q, %q)", idCol, popCol)
	}

	out := make([]PopulationRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, PopulationRow{
			RawID: cell(row, idIdx),
			Total: cell(row, popIdx),
		})
	}
	return out, nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}
