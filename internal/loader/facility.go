package loader

import (
	"strconv"

	"github.com/emilydolson/hospital-beds-per-capita/internal/domain"
)

// Facility dataset column names (HIFLD hospitals export).
const (
	colCountyFIPS = "COUNTYFIPS"
	colBeds       = "BEDS"
	colStatus     = "STATUS"
	colType       = "TYPE"
)

// LoadFacilities reads the hospital facility CSV. Every row is returned,
// including non-qualifying ones; qualification is the aggregator's call, and
// the audit report wants to count the exclusions.
func LoadFacilities(path string) ([]domain.Facility, error) {
	t, err := readTable(path, colCountyFIPS, colBeds, colStatus, colType)
	if err != nil {
		return nil, err
	}

	facilities := make([]domain.Facility, 0, len(t.rows))
	for i, row := range t.rows {
		bedsStr := t.get(row, colBeds)
		beds, err := strconv.Atoi(bedsStr)
		if err != nil {
			return nil, t.rowError(i, "invalid %s value %q", colBeds, bedsStr)
		}

		facilities = append(facilities, domain.Facility{
			FIPS:   domain.NormalizeFIPS(t.get(row, colCountyFIPS)),
			Beds:   beds,
			Status: t.get(row, colStatus),
			Type:   t.get(row, colType),
		})
	}

	return facilities, nil
}
