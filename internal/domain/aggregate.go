package domain

import "strings"

// SentinelBeds is the facility dataset's marker for an unknown or
// not-applicable bed count. It must never be summed as a literal count.
const SentinelBeds = -999

// qualifyingTypes are the facility types that count toward a county's
// staffed-bed total.
var qualifyingTypes = map[string]struct{}{
	"GENERAL ACUTE CARE": {},
	"CRITICAL ACCESS":    {},
}

// ExclusionReason classifies why a facility row does not contribute to its
// county's bed sum. Used as an audit and metrics label.
type ExclusionReason string

const (
	ExcludedSentinel       ExclusionReason = "sentinel_beds"
	ExcludedNotOpen        ExclusionReason = "not_open"
	ExcludedType           ExclusionReason = "non_qualifying_type"
	ExcludedNonpositiveBed ExclusionReason = "nonpositive_beds"
)

// Exclusion returns the reason a facility is excluded from aggregation, or
// ("", true) when it qualifies. Checks run sentinel first so a closed
// facility with -999 beds is counted as a sentinel row, keeping the audit's
// sentinel count a faithful tally of unknown bed values.
func Exclusion(f Facility) (ExclusionReason, bool) {
	switch {
	case f.Beds == SentinelBeds:
		return ExcludedSentinel, false
	case !strings.EqualFold(strings.TrimSpace(f.Status), "OPEN"):
		return ExcludedNotOpen, false
	case !isQualifyingType(f.Type):
		return ExcludedType, false
	case f.Beds <= 0:
		return ExcludedNonpositiveBed, false
	}
	return "", true
}

func isQualifyingType(t string) bool {
	_, ok := qualifyingTypes[strings.ToUpper(strings.TrimSpace(t))]
	return ok
}

// AggregateBeds sums qualifying bed counts per county FIPS code. Counties
// with no qualifying facility are absent from the result, not present with
// zero; the join decides what that absence means (see JoinPopulation). The
// sum is order-independent.
func AggregateBeds(facilities []Facility) map[string]int {
	beds := make(map[string]int)
	for _, f := range facilities {
		if _, ok := Exclusion(f); ok {
			beds[NormalizeFIPS(f.FIPS)] += f.Beds
		}
	}
	return beds
}
