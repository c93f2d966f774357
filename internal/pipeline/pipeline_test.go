package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilydolson/hospital-beds-per-capita/internal/domain"
	"github.com/emilydolson/hospital-beds-per-capita/internal/geometry"
	"github.com/emilydolson/hospital-beds-per-capita/internal/observability"
	"github.com/emilydolson/hospital-beds-per-capita/internal/pipeline"
)

// --- mocks ---

type mockLoader struct {
	facilities []domain.Facility
	population []domain.PopulationRecord
	err        error
}

func (m *mockLoader) Facilities(_ context.Context) ([]domain.Facility, error) {
	return m.facilities, m.err
}

func (m *mockLoader) Population(_ context.Context) ([]domain.PopulationRecord, error) {
	return m.population, nil
}

type mockGeometry struct {
	table *geometry.Table
}

func (m *mockGeometry) Geometry(_ context.Context) (*geometry.Table, error) {
	return m.table, nil
}

type mockRenderer struct {
	joined  geometry.JoinResult
	metrics []domain.CountyMetrics
	err     error
}

func (m *mockRenderer) Render(_ context.Context, joined geometry.JoinResult, metrics []domain.CountyMetrics) ([]string, error) {
	m.joined = joined
	m.metrics = metrics
	if m.err != nil {
		return nil, m.err
	}
	return []string{"out/map.svg"}, nil
}

// --- fixtures ---

func testGeometryTable(t *testing.T) *geometry.Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "county_map.csv")
	csv := "long,lat,group,order,region,subregion\n" +
		"-122.3,37.5,1,1,california,alameda\n" +
		"-122.3,37.9,1,2,california,alameda\n" +
		"-122.0,37.5,1,3,california,alameda\n" +
		"-120.0,38.8,2,1,california,alpine\n" +
		"-119.5,38.8,2,2,california,alpine\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	table, err := geometry.Load(path)
	require.NoError(t, err)
	return table
}

func testLoader() *mockLoader {
	return &mockLoader{
		facilities: []domain.Facility{
			{FIPS: "06001", Beds: 700, Status: "OPEN", Type: "GENERAL ACUTE CARE"},
			{FIPS: "06001", Beds: 500, Status: "OPEN", Type: "GENERAL ACUTE CARE"},
			{FIPS: "06001", Beds: domain.SentinelBeds, Status: "OPEN", Type: "GENERAL ACUTE CARE"},
			{FIPS: "06001", Beds: 80, Status: "CLOSED", Type: "GENERAL ACUTE CARE"},
			{FIPS: "06003", Beds: 40, Status: "OPEN", Type: "PSYCHIATRIC"},
		},
		population: []domain.PopulationRecord{
			{FIPS: "06001", State: "CA", AreaName: "Alameda County", Population: 1666753},
			{FIPS: "06003", State: "CA", AreaName: "Alpine County", Population: 1101},
		},
	}
}

func newPipeline(loader pipeline.DataLoader, geo pipeline.GeometrySource, r pipeline.Renderer, opts pipeline.Options) *pipeline.Pipeline {
	return pipeline.New(loader, geo, r, slog.Default(), observability.NewMetricsForTesting(),
		clockwork.NewFakeClockAt(time.Date(2020, 3, 22, 12, 0, 0, 0, time.UTC)), nil, opts)
}

// --- tests ---

func TestPipeline_Run_InnerJoin(t *testing.T) {
	renderer := &mockRenderer{}
	p := newPipeline(testLoader(), &mockGeometry{table: testGeometryTable(t)}, renderer, pipeline.Options{})

	audit, err := p.Run(context.Background())
	require.NoError(t, err)

	t.Run("facility accounting", func(t *testing.T) {
		assert.Equal(t, 5, audit.FacilityRows)
		assert.Equal(t, 2, audit.QualifyingFacilities)
		assert.Equal(t, 1, audit.ExcludedFacilities[domain.ExcludedSentinel])
		assert.Equal(t, 1, audit.ExcludedFacilities[domain.ExcludedNotOpen])
		assert.Equal(t, 1, audit.ExcludedFacilities[domain.ExcludedType])
		assert.Equal(t, 1, audit.CountiesWithBeds)
	})

	t.Run("alpine dropped by inner join", func(t *testing.T) {
		assert.Equal(t, 1, audit.JoinedCounties)
		assert.Equal(t, 1, audit.DroppedNoBeds)
		require.Len(t, renderer.metrics, 1)
		assert.Equal(t, "alameda", renderer.metrics[0].Subregion)
	})

	t.Run("end-to-end alameda metrics", func(t *testing.T) {
		row := renderer.metrics[0]
		assert.Equal(t, 1200, row.Beds)
		assert.InDelta(t, 0.00072, row.PerCapita, 1e-5)
		assert.Equal(t, "california", row.Region)
	})

	t.Run("alpine polygon survives as no-data", func(t *testing.T) {
		assert.Equal(t, 5, audit.GeometryVertices)
		assert.Equal(t, 1, audit.MatchedGeometryCounties)
		assert.Equal(t, 1, audit.UnmatchedPolygonCounties)

		var alpineVerts int
		for _, v := range renderer.joined.Vertices {
			if v.Subregion == "alpine" {
				assert.Nil(t, v.Metrics)
				alpineVerts++
			}
		}
		assert.Equal(t, 2, alpineVerts)
	})

	t.Run("report available after completion", func(t *testing.T) {
		require.NoError(t, p.CheckReadiness(context.Background()))
		got, ok := p.Audit()
		require.True(t, ok)
		assert.Equal(t, *audit, got)
	})
}

func TestPipeline_Run_ZeroFill(t *testing.T) {
	renderer := &mockRenderer{}
	p := newPipeline(testLoader(), &mockGeometry{table: testGeometryTable(t)}, renderer,
		pipeline.Options{IncludeZeroBeds: true})

	audit, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, audit.JoinedCounties)
	assert.Equal(t, 0, audit.DroppedNoBeds)
	assert.Equal(t, 2, audit.MatchedGeometryCounties)

	require.Len(t, renderer.metrics, 2)
	alpine := renderer.metrics[1]
	assert.Equal(t, 0, alpine.Beds)
	assert.Zero(t, alpine.Per1000)
}

func TestPipeline_Run_DuplicateCountyKeys(t *testing.T) {
	// Two distinct FIPS codes whose area names normalize to the same
	// (region, subregion) key. The geometry join keeps the first and the
	// audit report must account for the discarded one.
	l := testLoader()
	l.population = append(l.population, domain.PopulationRecord{
		FIPS: "06999", State: "CA", AreaName: "Alameda", Population: 5000,
	})
	l.facilities = append(l.facilities, domain.Facility{
		FIPS: "06999", Beds: 25, Status: "OPEN", Type: "CRITICAL ACCESS",
	})
	renderer := &mockRenderer{}
	p := newPipeline(l, &mockGeometry{table: testGeometryTable(t)}, renderer, pipeline.Options{})

	audit, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, audit.JoinedCounties)
	assert.Equal(t, 1, audit.DuplicateCountyKeys)
	assert.Equal(t, 0, audit.CountiesWithoutGeometry, "the duplicate is counted as a collision, not a geometry miss")
}

func TestPipeline_Run_LoadError(t *testing.T) {
	loadErr := &domain.LoadError{File: "hospitals.csv", Msg: "cannot open file"}
	p := newPipeline(&mockLoader{err: loadErr}, &mockGeometry{}, &mockRenderer{}, pipeline.Options{})

	_, err := p.Run(context.Background())
	var got *domain.LoadError
	require.ErrorAs(t, err, &got)

	assert.Error(t, p.CheckReadiness(context.Background()))
	_, ok := p.Audit()
	assert.False(t, ok)
}

func TestPipeline_Run_UnknownState(t *testing.T) {
	l := testLoader()
	l.population = append(l.population, domain.PopulationRecord{
		FIPS: "99001", State: "XX", AreaName: "Nowhere County", Population: 10,
	})
	l.facilities = append(l.facilities, domain.Facility{
		FIPS: "99001", Beds: 10, Status: "OPEN", Type: "CRITICAL ACCESS",
	})
	p := newPipeline(l, &mockGeometry{table: testGeometryTable(t)}, &mockRenderer{}, pipeline.Options{})

	_, err := p.Run(context.Background())
	var unknownErr *domain.UnknownStateError
	require.ErrorAs(t, err, &unknownErr)
}

func TestPipeline_Run_RenderError(t *testing.T) {
	p := newPipeline(testLoader(), &mockGeometry{table: testGeometryTable(t)},
		&mockRenderer{err: errors.New("disk full")}, pipeline.Options{})

	_, err := p.Run(context.Background())
	require.ErrorContains(t, err, "disk full")
}

func TestPipeline_Run_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newPipeline(testLoader(), &mockGeometry{table: testGeometryTable(t)}, &mockRenderer{}, pipeline.Options{})
	_, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFileSources(t *testing.T) {
	dir := t.TempDir()

	facilityPath := filepath.Join(dir, "hospitals.csv")
	require.NoError(t, os.WriteFile(facilityPath, []byte(
		"COUNTYFIPS,BEDS,STATUS,TYPE\n06001,169,OPEN,GENERAL ACUTE CARE\n"), 0o644))

	popPath := filepath.Join(dir, "population.csv")
	require.NoError(t, os.WriteFile(popPath, []byte(
		"FIPS,State,Area_Name,POP_ESTIMATE_2018\n06001,CA,Alameda County,1666753\n"), 0o644))

	l := &pipeline.FileLoader{FacilityPath: facilityPath, PopulationPath: popPath, ReferenceYear: 2018}

	facilities, err := l.Facilities(context.Background())
	require.NoError(t, err)
	assert.Len(t, facilities, 1)

	population, err := l.Population(context.Background())
	require.NoError(t, err)
	assert.Len(t, population, 1)
}
