// Package geometry loads the county polygon vertex table and joins county
// metrics onto it by (region, subregion) name keys.
//
// The table is the standard US county map export: one row per polygon vertex
// with columns long, lat, group, order, region, subregion. A group is one
// polygon ring; multi-polygon counties (islands, exclaves) span several
// groups that share the same name key. Vertex order within a group is the
// drawing path and must survive every downstream transformation, or the
// rendered polygons self-intersect.
package geometry

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/emilydolson/hospital-beds-per-capita/internal/domain"
)

// Vertex is one polygon vertex row.
type Vertex struct {
	Long      float64
	Lat       float64
	Group     int // polygon ring identifier
	Order     int // drawing order within the group
	Region    string
	Subregion string
}

// CountyKey is the normalized (region, subregion) join key.
type CountyKey struct {
	Region    string
	Subregion string
}

// Table holds the vertex rows sorted by (group, order) plus a name index.
type Table struct {
	vertices []Vertex
	counties map[CountyKey][]int // key -> indices of that county's vertices
}

// Load reads a polygon vertex CSV. Rows are sorted by (group, order) on load
// so the path-order invariant holds regardless of file row order.
func Load(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &domain.LoadError{File: path, Msg: "cannot open file", Err: err}
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReaderSize(file, 256*1024))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, &domain.LoadError{File: path, Row: 1, Msg: "cannot read header row", Err: err}
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"long", "lat", "group", "order", "region", "subregion"} {
		if _, ok := colIdx[col]; !ok {
			return nil, &domain.LoadError{File: path, Row: 1, Msg: "missing required column: " + col}
		}
	}

	t := &Table{counties: make(map[CountyKey][]int)}
	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			return nil, &domain.LoadError{File: path, Row: rowNum, Msg: "malformed CSV row", Err: err}
		}

		v, perr := parseVertex(row, colIdx)
		if perr != "" {
			return nil, &domain.LoadError{File: path, Row: rowNum, Msg: perr}
		}
		t.vertices = append(t.vertices, v)
	}

	sort.SliceStable(t.vertices, func(i, j int) bool {
		a, b := t.vertices[i], t.vertices[j]
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Order < b.Order
	})

	for i, v := range t.vertices {
		key := CountyKey{Region: v.Region, Subregion: v.Subregion}
		t.counties[key] = append(t.counties[key], i)
	}

	return t, nil
}

// Vertices returns the vertex rows in (group, order) order.
func (t *Table) Vertices() []Vertex { return t.vertices }

// CountyCount returns the number of distinct (region, subregion) keys.
func (t *Table) CountyCount() int { return len(t.counties) }

func parseVertex(row []string, colIdx map[string]int) (Vertex, string) {
	get := func(col string) string {
		idx := colIdx[col]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	long, err := strconv.ParseFloat(get("long"), 64)
	if err != nil {
		return Vertex{}, "invalid long value " + strconv.Quote(get("long"))
	}
	lat, err := strconv.ParseFloat(get("lat"), 64)
	if err != nil {
		return Vertex{}, "invalid lat value " + strconv.Quote(get("lat"))
	}
	group, err := strconv.Atoi(get("group"))
	if err != nil {
		return Vertex{}, "invalid group value " + strconv.Quote(get("group"))
	}
	order, err := strconv.Atoi(get("order"))
	if err != nil {
		return Vertex{}, "invalid order value " + strconv.Quote(get("order"))
	}

	return Vertex{
		Long:      long,
		Lat:       lat,
		Group:     group,
		Order:     order,
		Region:    strings.ToLower(get("region")),
		Subregion: strings.ToLower(get("subregion")),
	}, ""
}
