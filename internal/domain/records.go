package domain

import "strings"

// Facility is one row of the hospital facility dataset.
type Facility struct {
	FIPS   string // five-digit county FIPS code
	Beds   int    // staffed bed count, or SentinelBeds when unknown
	Status string // operational status, e.g. "OPEN", "CLOSED"
	Type   string // facility type, e.g. "GENERAL ACUTE CARE"
}

// PopulationRecord is one county row of the population estimates dataset.
type PopulationRecord struct {
	FIPS       string // five-digit county FIPS code
	State      string // two-letter state or territory abbreviation
	AreaName   string // human-readable name, e.g. "Alameda County"
	Population int    // estimate for the configured reference year
}

// CountyMetrics is the joined per-county record produced by step A-C of the
// join: aggregated beds, population, derived metrics, and the normalized
// (region, subregion) key used to match polygon geometry.
type CountyMetrics struct {
	FIPS       string
	Beds       int
	Population int
	PerCapita  float64 // beds / population
	Per1000    float64 // beds * 1000 / population
	Region     string  // lowercase full state name, e.g. "california"
	Subregion  string  // lowercase county name, suffix stripped, e.g. "alameda"
}

// NormalizeFIPS zero-pads a FIPS code to five digits. Numeric storage in the
// population file drops leading zeros ("6001" for Alameda); re-padding makes
// the code joinable against the facility file's text column.
func NormalizeFIPS(fips string) string {
	fips = strings.TrimSpace(fips)
	for len(fips) > 0 && len(fips) < 5 {
		fips = "0" + fips
	}
	return fips
}

// IsStateTotal reports whether a FIPS code names a state or national roll-up
// row (county code "000") rather than an actual county.
func IsStateTotal(fips string) bool {
	return len(fips) == 5 && strings.HasSuffix(fips, "000")
}
