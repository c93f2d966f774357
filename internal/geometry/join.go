package geometry

import "github.com/emilydolson/hospital-beds-per-capita/internal/domain"

// JoinedVertex pairs a polygon vertex with its county's metrics. Metrics is
// nil for polygons with no matching data row (the "no data" class).
type JoinedVertex struct {
	Vertex
	Metrics *domain.CountyMetrics
}

// JoinResult is the geometry left join output plus its match accounting.
type JoinResult struct {
	Vertices []JoinedVertex

	MatchedCounties   int // polygon counties with a data row
	UnmatchedPolygons int // polygon counties with no data row
	UnmatchedData     int // data counties with no polygon
	DuplicateKeys     int // data rows discarded for sharing a (region, subregion) key
}

// Join left-joins county metrics onto the polygon table by (region,
// subregion). Every vertex row is preserved in (group, order) sequence;
// unmatched polygons keep nil metrics rather than being dropped. Data rows
// with no polygon are only counted, not emitted; they have nothing to draw.
//
// Metric rows must have unique keys. When two rows collide the first one
// wins and the rest are counted in DuplicateKeys; a nonzero count means
// upstream normalization merged distinct county-equivalents.
func (t *Table) Join(metrics []domain.CountyMetrics) JoinResult {
	var result JoinResult
	byKey := make(map[CountyKey]*domain.CountyMetrics, len(metrics))
	for i := range metrics {
		m := &metrics[i]
		key := CountyKey{Region: m.Region, Subregion: m.Subregion}
		if _, seen := byKey[key]; seen {
			result.DuplicateKeys++
			continue
		}
		byKey[key] = m
	}

	result.Vertices = make([]JoinedVertex, 0, len(t.vertices))
	for _, v := range t.vertices {
		result.Vertices = append(result.Vertices, JoinedVertex{
			Vertex:  v,
			Metrics: byKey[CountyKey{Region: v.Region, Subregion: v.Subregion}],
		})
	}

	for key := range t.counties {
		if _, ok := byKey[key]; ok {
			result.MatchedCounties++
		} else {
			result.UnmatchedPolygons++
		}
	}
	for key := range byKey {
		if _, ok := t.counties[key]; !ok {
			result.UnmatchedData++
		}
	}

	return result
}
