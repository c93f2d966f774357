package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/emilydolson/hospital-beds-per-capita/internal/domain"
)

// Population dataset column names (USDA ERS county population estimates).
const (
	colFIPS     = "FIPS"
	colState    = "State"
	colAreaName = "Area_Name"
)

// PopEstimateColumn returns the population-estimate column name for a
// reference year, e.g. "POP_ESTIMATE_2018".
func PopEstimateColumn(year int) string {
	return fmt.Sprintf("POP_ESTIMATE_%d", year)
}

// LoadPopulation reads the county population CSV for the given reference
// year. State and national roll-up rows (FIPS ending "000") are skipped so
// downstream joins only ever see counties. Estimates may carry thousands
// separators ("1,666,753").
func LoadPopulation(path string, year int) ([]domain.PopulationRecord, error) {
	popCol := PopEstimateColumn(year)
	t, err := readTable(path, colFIPS, colState, colAreaName, popCol)
	if err != nil {
		return nil, err
	}

	records := make([]domain.PopulationRecord, 0, len(t.rows))
	for i, row := range t.rows {
		fips := domain.NormalizeFIPS(t.get(row, colFIPS))
		if fips == "" || domain.IsStateTotal(fips) {
			continue
		}

		popStr := strings.ReplaceAll(t.get(row, popCol), ",", "")
		if popStr == "" {
			// Some territory counties have no estimate for a given year.
			// An absent estimate is not malformed data; the join excludes
			// the county and counts it.
			records = append(records, domain.PopulationRecord{
				FIPS:     fips,
				State:    t.get(row, colState),
				AreaName: t.get(row, colAreaName),
			})
			continue
		}

		pop, err := strconv.Atoi(popStr)
		if err != nil || pop < 0 {
			return nil, t.rowError(i, "invalid %s value %q", popCol, t.get(row, popCol))
		}

		records = append(records, domain.PopulationRecord{
			FIPS:       fips,
			State:      t.get(row, colState),
			AreaName:   t.get(row, colAreaName),
			Population: pop,
		})
	}

	return records, nil
}
