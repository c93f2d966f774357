// Package render produces the run's visual artifacts: a distribution
// histogram and three county choropleth maps.
package render

import "sort"

// quantileBreaks returns classes+1 ascending class edges placed at equal
// quantiles of the value distribution. Quantile classing keeps the map
// legible when a few urban counties dwarf everything else, which is exactly
// the shape bed counts have. Fewer distinct values than classes collapses
// to however many classes the data supports.
func quantileBreaks(values []float64, classes int) []float64 {
	if len(values) == 0 || classes < 1 {
		return nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	breaks := make([]float64, 0, classes+1)
	breaks = append(breaks, sorted[0])
	for i := 1; i <= classes; i++ {
		idx := i * (len(sorted) - 1) / classes
		edge := sorted[idx]
		if edge > breaks[len(breaks)-1] {
			breaks = append(breaks, edge)
		}
	}
	if len(breaks) == 1 {
		// All values identical; a single degenerate class.
		breaks = append(breaks, breaks[0])
	}
	return breaks
}

// classIndex returns the class a value falls in: the last class whose lower
// edge is <= v. Values at or above the top edge land in the last class.
func classIndex(breaks []float64, v float64) int {
	if len(breaks) < 2 {
		return 0
	}
	for i := len(breaks) - 2; i > 0; i-- {
		if v >= breaks[i] {
			return i
		}
	}
	return 0
}
