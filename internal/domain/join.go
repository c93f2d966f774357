package domain

// JoinStats counts the rows a join silently excludes. The source pipeline
// dropped these without a trace; surfacing the counts is what makes the drops
// auditable rather than invisible.
type JoinStats struct {
	Joined                int
	DroppedNoBeds         int // counties with no qualifying facility (inner-join mode)
	DroppedZeroPopulation int // counties with population <= 0
}

// JoinPopulation joins county population records with the aggregated bed
// mapping and derives the per-capita metrics and normalized geometry keys.
//
// With includeZeroBeds false the join is an inner join: counties absent from
// the bed mapping are dropped and counted in DroppedNoBeds. With it true the
// join keeps every population county, filling beds with 0, so bed-less
// counties render as zero instead of vanishing from the map.
//
// Counties with population <= 0 are excluded either way (the metric is
// undefined) and counted in DroppedZeroPopulation. An unknown state
// abbreviation aborts the join with *UnknownStateError.
func JoinPopulation(pop []PopulationRecord, beds map[string]int, includeZeroBeds bool) ([]CountyMetrics, JoinStats, error) {
	joined := make([]CountyMetrics, 0, len(pop))
	var stats JoinStats

	for _, rec := range pop {
		fips := NormalizeFIPS(rec.FIPS)
		bedCount, ok := beds[fips]
		if !ok {
			if !includeZeroBeds {
				stats.DroppedNoBeds++
				continue
			}
			bedCount = 0
		}
		if rec.Population <= 0 {
			stats.DroppedZeroPopulation++
			continue
		}

		region, err := NormalizeRegion(rec.State, fips)
		if err != nil {
			return nil, stats, err
		}

		joined = append(joined, CountyMetrics{
			FIPS:       fips,
			Beds:       bedCount,
			Population: rec.Population,
			PerCapita:  float64(bedCount) / float64(rec.Population),
			Per1000:    float64(bedCount) * 1000 / float64(rec.Population),
			Region:     region,
			Subregion:  NormalizeSubregion(rec.AreaName),
		})
	}

	stats.Joined = len(joined)
	return joined, stats, nil
}
