// Package domain models US hospital facility and county population data.
//
// # Data Sources
//
// Facility records come from the HIFLD national hospital dataset, a flat CSV
// with one row per licensed facility. County population records come from the
// USDA ERS county population estimates, one row per county plus state and
// national roll-up rows. County polygon geometry is an export of the standard
// US county map table, one row per polygon vertex (see package geometry).
//
// # Source Data Conventions
//
// FIPS codes:
//
//	Five-digit county identifiers: two-digit state code followed by a
//	three-digit county code, e.g. "06001" = Alameda County, CA. The facility
//	file stores them as zero-padded text while the population file stores them
//	numerically, which silently drops leading zeros for the New England and
//	Alabama-through-Connecticut state codes. [NormalizeFIPS] re-pads to five
//	digits so the two files share a key space.
//
// Bed counts:
//
//	The BEDS column uses -999 as a sentinel meaning "unknown or not
//	applicable". Sentinel rows must never contribute to a county sum; the
//	qualification rule (beds > 0) excludes them along with genuine zero and
//	negative counts.
//
// Qualifying facilities:
//
//	Only open general acute care and critical access hospitals count toward a
//	county's staffed-bed total. Psychiatric, military, long term care,
//	rehabilitation, and closed facilities are excluded. See [Exclusion].
//
// Area names:
//
//	Population rows carry a human-readable Area_Name, typically
//	"<Name> County" but also "<Name> Parish" (Louisiana), "<Name> Borough" and
//	"<Name> Census Area" (Alaska). The polygon table instead keys counties by
//	lowercase (region, subregion) name pairs with the suffix already removed,
//	so joining the two requires the normalization in [NormalizeSubregion],
//	including an alias table for counties the two sources spell differently.
//
// State and national roll-ups:
//
//	Population rows whose FIPS ends in "000" are state or national totals, not
//	counties. Loaders skip them so a zero-fill join cannot invent a
//	51-million-bed "california" county.
package domain
