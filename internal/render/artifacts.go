package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/emilydolson/hospital-beds-per-capita/internal/domain"
	"github.com/emilydolson/hospital-beds-per-capita/internal/geometry"
)

// Artifacts writes the full output set for a run: one histogram and three
// choropleths (total beds, beds per capita, beds per 1000 people).
type Artifacts struct {
	OutputDir string
}

// Render produces all artifacts and returns the paths written.
func (a *Artifacts) Render(ctx context.Context, joined geometry.JoinResult, metrics []domain.CountyMetrics) ([]string, error) {
	if err := os.MkdirAll(a.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	per1000 := make([]float64, len(metrics))
	for i, m := range metrics {
		per1000[i] = m.Per1000
	}

	type artifact struct {
		name   string
		render func(path string) error
	}
	artifacts := []artifact{
		{"beds_per_1000_histogram.png", func(p string) error {
			return Histogram(p, per1000, "Hospital beds per 1000 people", "beds per 1000 people")
		}},
		{"total_beds_map.svg", func(p string) error {
			return Choropleth(p, joined,
				func(m *domain.CountyMetrics) float64 { return float64(m.Beds) },
				"Hospital beds by county",
				func(v float64) string { return fmt.Sprintf("%.0f", v) })
		}},
		{"beds_per_capita_map.svg", func(p string) error {
			return Choropleth(p, joined,
				func(m *domain.CountyMetrics) float64 { return m.PerCapita },
				"Hospital beds per capita by county",
				func(v float64) string { return fmt.Sprintf("%.5f", v) })
		}},
		{"beds_per_1000_map.svg", func(p string) error {
			return Choropleth(p, joined,
				func(m *domain.CountyMetrics) float64 { return m.Per1000 },
				"Hospital beds per 1000 people by county",
				func(v float64) string { return fmt.Sprintf("%.2f", v) })
		}},
	}

	paths := make([]string, 0, len(artifacts))
	for _, art := range artifacts {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path := filepath.Join(a.OutputDir, art.name)
		if err := art.render(path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
