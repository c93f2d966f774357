// Package pipeline orchestrates one batch run: load both tabular inputs,
// aggregate qualifying beds per county, join population, derive metrics,
// join polygon geometry, and render the artifacts. A run is single-pass and
// idempotent; identical inputs yield identical outputs.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/emilydolson/hospital-beds-per-capita/internal/domain"
	"github.com/emilydolson/hospital-beds-per-capita/internal/geometry"
	"github.com/emilydolson/hospital-beds-per-capita/internal/observability"
	"github.com/emilydolson/hospital-beds-per-capita/internal/progress"
)

// DataLoader provides the two tabular inputs.
type DataLoader interface {
	Facilities(ctx context.Context) ([]domain.Facility, error)
	Population(ctx context.Context) ([]domain.PopulationRecord, error)
}

// GeometrySource provides the county polygon table.
type GeometrySource interface {
	Geometry(ctx context.Context) (*geometry.Table, error)
}

// Renderer writes the output artifacts and returns the paths written.
type Renderer interface {
	Render(ctx context.Context, joined geometry.JoinResult, metrics []domain.CountyMetrics) ([]string, error)
}

// Options are the run's policy knobs.
type Options struct {
	// IncludeZeroBeds switches the population join from inner to zero-fill
	// left join so counties without qualifying hospitals stay on the map.
	IncludeZeroBeds bool
}

// Pipeline wires the stages together with logging, metrics, and progress.
type Pipeline struct {
	loader   DataLoader
	geo      GeometrySource
	renderer Renderer
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
	progress progress.Manager
	opts     Options

	mu    sync.Mutex
	audit *AuditReport
}

// New creates a Pipeline with the given stages and observability.
func New(loader DataLoader, geo GeometrySource, renderer Renderer, logger *slog.Logger,
	metrics *observability.Metrics, clock clockwork.Clock, prog progress.Manager, opts Options) *Pipeline {
	if prog == nil {
		prog = progress.NoopManager{}
	}
	return &Pipeline{
		loader:   loader,
		geo:      geo,
		renderer: renderer,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
		progress: prog,
		opts:     opts,
	}
}

// CheckReadiness returns nil once a run has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if _, ok := p.Audit(); !ok {
		return errors.New("run has not completed yet")
	}
	return nil
}

// Audit returns the completed run's audit report, or ok=false before
// completion.
func (p *Pipeline) Audit() (AuditReport, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audit == nil {
		return AuditReport{}, false
	}
	return *p.audit, true
}

const stageCount = 6

// Run executes the full pipeline once and returns the audit report.
func (p *Pipeline) Run(ctx context.Context) (*AuditReport, error) {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	tracker := p.progress.StartRun(stageCount)
	defer func() {
		tracker.Done()
		p.progress.Wait()
	}()

	audit := &AuditReport{StartedAt: p.clock.Now()}

	var facilities []domain.Facility
	if err := p.stage(ctx, "load facilities", tracker, func() error {
		var err error
		facilities, err = p.loader.Facilities(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	audit.FacilityRows = len(facilities)
	p.metrics.FacilityRowsRead.Add(float64(len(facilities)))

	var population []domain.PopulationRecord
	if err := p.stage(ctx, "load population", tracker, func() error {
		var err error
		population, err = p.loader.Population(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	audit.PopulationRows = len(population)
	p.metrics.PopulationRowsRead.Add(float64(len(population)))

	var beds map[string]int
	if err := p.stage(ctx, "aggregate beds", tracker, func() error {
		beds = domain.AggregateBeds(facilities)
		audit.tallyExclusions(facilities)
		return nil
	}); err != nil {
		return nil, err
	}
	audit.CountiesWithBeds = len(beds)
	for reason, n := range audit.ExcludedFacilities {
		p.metrics.FacilitiesExcluded.WithLabelValues(string(reason)).Add(float64(n))
	}

	var joined []domain.CountyMetrics
	if err := p.stage(ctx, "join population", tracker, func() error {
		var stats domain.JoinStats
		var err error
		joined, stats, err = domain.JoinPopulation(population, beds, p.opts.IncludeZeroBeds)
		if err != nil {
			return err
		}
		audit.JoinedCounties = stats.Joined
		audit.DroppedNoBeds = stats.DroppedNoBeds
		audit.DroppedZeroPopulation = stats.DroppedZeroPopulation
		return nil
	}); err != nil {
		return nil, err
	}
	p.metrics.CountiesJoined.Set(float64(audit.JoinedCounties))
	p.metrics.JoinDrops.WithLabelValues("no_beds").Add(float64(audit.DroppedNoBeds))
	p.metrics.JoinDrops.WithLabelValues("zero_population").Add(float64(audit.DroppedZeroPopulation))

	var geoJoin geometry.JoinResult
	if err := p.stage(ctx, "join geometry", tracker, func() error {
		table, err := p.geo.Geometry(ctx)
		if err != nil {
			return err
		}
		audit.GeometryVertices = len(table.Vertices())
		audit.GeometryCounties = table.CountyCount()
		geoJoin = table.Join(joined)
		return nil
	}); err != nil {
		return nil, err
	}
	audit.MatchedGeometryCounties = geoJoin.MatchedCounties
	audit.UnmatchedPolygonCounties = geoJoin.UnmatchedPolygons
	audit.CountiesWithoutGeometry = geoJoin.UnmatchedData
	audit.DuplicateCountyKeys = geoJoin.DuplicateKeys
	p.metrics.GeometryVertices.Add(float64(audit.GeometryVertices))
	p.metrics.GeometryMisses.WithLabelValues("polygon").Add(float64(geoJoin.UnmatchedPolygons))
	p.metrics.GeometryMisses.WithLabelValues("data").Add(float64(geoJoin.UnmatchedData))
	p.metrics.GeometryMisses.WithLabelValues("duplicate_key").Add(float64(geoJoin.DuplicateKeys))
	if geoJoin.DuplicateKeys > 0 {
		p.logger.Warn("county metric rows collided on (region, subregion); normalization likely merged distinct county-equivalents",
			"duplicates", geoJoin.DuplicateKeys)
	}

	if err := p.stage(ctx, "render", tracker, func() error {
		paths, err := p.renderer.Render(ctx, geoJoin, joined)
		audit.ArtifactsWritten = paths
		return err
	}); err != nil {
		return nil, err
	}
	p.metrics.ArtifactsWritten.Add(float64(len(audit.ArtifactsWritten)))

	audit.Duration = p.clock.Now().Sub(audit.StartedAt)
	p.mu.Lock()
	p.audit = audit
	p.mu.Unlock()

	audit.Log(p.logger)
	return audit, nil
}

// stage runs one named stage with cancellation check, progress, timing, and
// uniform error logging.
func (p *Pipeline) stage(ctx context.Context, name string, tracker progress.Tracker, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tracker.Stage(name)
	p.logger.Debug("stage starting", "stage", name)

	start := p.clock.Now()
	err := fn()
	elapsed := p.clock.Now().Sub(start)
	p.metrics.StageDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	if err != nil {
		p.logger.Error("stage failed", "stage", name, "duration", elapsed, "error", err)
		return err
	}

	p.logger.Debug("stage complete", "stage", name, "duration", elapsed)
	tracker.Advance()
	return nil
}

// AuditReport accounts for every row a run read, kept, or excluded. The
// source analysis dropped rows silently at three points (non-qualifying
// facilities, the inner population join, the name-keyed geometry join); this
// report is the required visibility into those drops.
type AuditReport struct {
	FacilityRows         int                            `json:"facility_rows"`
	QualifyingFacilities int                            `json:"qualifying_facilities"`
	ExcludedFacilities   map[domain.ExclusionReason]int `json:"excluded_facilities"`
	CountiesWithBeds     int                            `json:"counties_with_beds"`

	PopulationRows        int `json:"population_rows"`
	JoinedCounties        int `json:"joined_counties"`
	DroppedNoBeds         int `json:"dropped_no_beds"`
	DroppedZeroPopulation int `json:"dropped_zero_population"`

	GeometryVertices         int `json:"geometry_vertices"`
	GeometryCounties         int `json:"geometry_counties"`
	MatchedGeometryCounties  int `json:"matched_geometry_counties"`
	UnmatchedPolygonCounties int `json:"unmatched_polygon_counties"`
	CountiesWithoutGeometry  int `json:"counties_without_geometry"`
	DuplicateCountyKeys      int `json:"duplicate_county_keys"`

	ArtifactsWritten []string      `json:"artifacts_written"`
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration"`
}

func (a *AuditReport) tallyExclusions(facilities []domain.Facility) {
	a.ExcludedFacilities = make(map[domain.ExclusionReason]int)
	for _, f := range facilities {
		if reason, ok := domain.Exclusion(f); !ok {
			a.ExcludedFacilities[reason]++
		} else {
			a.QualifyingFacilities++
		}
	}
}

// Log emits the report as one structured log line per concern.
func (a *AuditReport) Log(logger *slog.Logger) {
	logger.Info("facility aggregation",
		"rows", a.FacilityRows,
		"qualifying", a.QualifyingFacilities,
		"excluded_sentinel", a.ExcludedFacilities[domain.ExcludedSentinel],
		"excluded_not_open", a.ExcludedFacilities[domain.ExcludedNotOpen],
		"excluded_type", a.ExcludedFacilities[domain.ExcludedType],
		"excluded_nonpositive", a.ExcludedFacilities[domain.ExcludedNonpositiveBed],
		"counties_with_beds", a.CountiesWithBeds,
	)
	logger.Info("population join",
		"population_rows", a.PopulationRows,
		"joined_counties", a.JoinedCounties,
		"dropped_no_beds", a.DroppedNoBeds,
		"dropped_zero_population", a.DroppedZeroPopulation,
	)
	logger.Info("geometry join",
		"vertices", a.GeometryVertices,
		"polygon_counties", a.GeometryCounties,
		"matched", a.MatchedGeometryCounties,
		"unmatched_polygons", a.UnmatchedPolygonCounties,
		"counties_without_geometry", a.CountiesWithoutGeometry,
		"duplicate_county_keys", a.DuplicateCountyKeys,
	)
	logger.Info("run complete",
		"artifacts", len(a.ArtifactsWritten),
		"duration", a.Duration,
	)
}
