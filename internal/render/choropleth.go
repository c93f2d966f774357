package render

import (
	"fmt"
	"io"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"

	"github.com/emilydolson/hospital-beds-per-capita/internal/domain"
	"github.com/emilydolson/hospital-beds-per-capita/internal/geometry"
)

const (
	mapWidth  = 960
	mapHeight = 600
	mapMargin = 20
	legendRow = 18
)

// Sequential blues ramp (light to dark), five classes.
var classFills = []string{"#eff3ff", "#bdd7e7", "#6baed6", "#3182bd", "#08519c"}

const noDataFill = "#cccccc"

// ValueFunc selects the metric a choropleth shades by.
type ValueFunc func(m *domain.CountyMetrics) float64

// Choropleth renders a filled county map to path. Polygons whose county has
// no joined data are drawn in the no-data gray rather than omitted; legend
// labels use formatValue.
func Choropleth(path string, joined geometry.JoinResult, value ValueFunc, title string, formatValue func(float64) string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeChoropleth(f, joined, value, title, formatValue); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

func writeChoropleth(w io.Writer, joined geometry.JoinResult, value ValueFunc, title string, formatValue func(float64) string) error {
	if len(joined.Vertices) == 0 {
		return fmt.Errorf("no geometry to render")
	}

	breaks := quantileBreaks(countyValues(joined, value), len(classFills))
	proj := fitProjection(joined.Vertices)

	canvas := svg.New(w)
	canvas.Start(mapWidth, mapHeight)
	canvas.Title(title)
	canvas.Rect(0, 0, mapWidth, mapHeight, "fill:#ffffff")

	// Vertices arrive sorted by (group, order); each run of one group id is
	// one polygon ring drawn in path order.
	start := 0
	for i := 1; i <= len(joined.Vertices); i++ {
		if i < len(joined.Vertices) && joined.Vertices[i].Group == joined.Vertices[start].Group {
			continue
		}
		drawPolygon(canvas, proj, joined.Vertices[start:i], value, breaks)
		start = i
	}

	canvas.Text(mapWidth/2, mapMargin+4, title, "font-family:sans-serif;font-size:16px;text-anchor:middle")
	drawLegend(canvas, breaks, formatValue)
	canvas.End()
	return nil
}

// countyValues collects one value per distinct joined county.
func countyValues(joined geometry.JoinResult, value ValueFunc) []float64 {
	seen := make(map[*domain.CountyMetrics]struct{})
	var values []float64
	for _, v := range joined.Vertices {
		if v.Metrics == nil {
			continue
		}
		if _, ok := seen[v.Metrics]; ok {
			continue
		}
		seen[v.Metrics] = struct{}{}
		values = append(values, value(v.Metrics))
	}
	return values
}

func drawPolygon(canvas *svg.SVG, proj projection, ring []geometry.JoinedVertex, value ValueFunc, breaks []float64) {
	xs := make([]int, len(ring))
	ys := make([]int, len(ring))
	for i, v := range ring {
		xs[i], ys[i] = proj.point(v.Long, v.Lat)
	}

	fill := noDataFill
	if m := ring[0].Metrics; m != nil {
		fill = classFills[classIndex(breaks, value(m))]
	}
	canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;stroke:#ffffff;stroke-width:0.5", fill))
}

func drawLegend(canvas *svg.SVG, breaks []float64, formatValue func(float64) string) {
	x := mapWidth - 200
	y := mapHeight - legendRow*(len(classFills)+2)

	for i := 0; i < len(classFills) && i+1 < len(breaks); i++ {
		rowY := y + i*legendRow
		canvas.Rect(x, rowY, 14, 14, fmt.Sprintf("fill:%s;stroke:#999999;stroke-width:0.5", classFills[i]))
		label := fmt.Sprintf("%s – %s", formatValue(breaks[i]), formatValue(breaks[i+1]))
		canvas.Text(x+20, rowY+11, label, "font-family:sans-serif;font-size:11px")
	}

	rowY := y + len(classFills)*legendRow
	canvas.Rect(x, rowY, 14, 14, fmt.Sprintf("fill:%s;stroke:#999999;stroke-width:0.5", noDataFill))
	canvas.Text(x+20, rowY+11, "no data", "font-family:sans-serif;font-size:11px")
}

// projection maps longitude/latitude onto the canvas: equirectangular with
// the x axis compressed by cos(mid latitude) so counties keep a familiar
// shape, fitted to the data bounds.
type projection struct {
	minLong, maxLat float64
	cosMid          float64
	scale           float64
	offsetX         int
	offsetY         int
}

func fitProjection(vertices []geometry.JoinedVertex) projection {
	minLong, maxLong := vertices[0].Long, vertices[0].Long
	minLat, maxLat := vertices[0].Lat, vertices[0].Lat
	for _, v := range vertices[1:] {
		minLong = math.Min(minLong, v.Long)
		maxLong = math.Max(maxLong, v.Long)
		minLat = math.Min(minLat, v.Lat)
		maxLat = math.Max(maxLat, v.Lat)
	}

	p := projection{
		minLong: minLong,
		maxLat:  maxLat,
		cosMid:  math.Cos((minLat + maxLat) / 2 * math.Pi / 180),
	}

	spanX := (maxLong - minLong) * p.cosMid
	spanY := maxLat - minLat
	if spanX <= 0 {
		spanX = 1
	}
	if spanY <= 0 {
		spanY = 1
	}

	innerW := float64(mapWidth - 2*mapMargin)
	innerH := float64(mapHeight - 2*mapMargin)
	p.scale = math.Min(innerW/spanX, innerH/spanY)

	// Center the fitted extent.
	p.offsetX = mapMargin + int((innerW-spanX*p.scale)/2)
	p.offsetY = mapMargin + int((innerH-spanY*p.scale)/2)
	return p
}

func (p projection) point(long, lat float64) (int, int) {
	x := (long - p.minLong) * p.cosMid * p.scale
	y := (p.maxLat - lat) * p.scale
	return p.offsetX + int(math.Round(x)), p.offsetY + int(math.Round(y))
}
