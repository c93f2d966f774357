package pipeline

import (
	"context"

	"github.com/emilydolson/hospital-beds-per-capita/internal/domain"
	"github.com/emilydolson/hospital-beds-per-capita/internal/geometry"
	"github.com/emilydolson/hospital-beds-per-capita/internal/loader"
)

// FileLoader implements DataLoader over the two input CSV files.
type FileLoader struct {
	FacilityPath   string
	PopulationPath string
	ReferenceYear  int
}

func (l *FileLoader) Facilities(_ context.Context) ([]domain.Facility, error) {
	return loader.LoadFacilities(l.FacilityPath)
}

func (l *FileLoader) Population(_ context.Context) ([]domain.PopulationRecord, error) {
	return loader.LoadPopulation(l.PopulationPath, l.ReferenceYear)
}

// FileGeometry implements GeometrySource over a polygon vertex CSV.
type FileGeometry struct {
	Path string
}

func (g *FileGeometry) Geometry(_ context.Context) (*geometry.Table, error) {
	return geometry.Load(g.Path)
}
