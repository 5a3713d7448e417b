package domain

import (
	"errors"
	"fmt"
	"slices"
)

// AreaCoordinate is one row of the coordinate reference table.
type AreaCoordinate struct {
	Area      string  `json:"area"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Coordinates is the immutable area → coordinate reference table.
type Coordinates struct {
	rows  []AreaCoordinate
	index map[string]int
}

// NewCoordinates builds the table, rejecting empty or duplicate area names.
func NewCoordinates(rows []AreaCoordinate) (*Coordinates, error) {
	c := &Coordinates{
		rows:  slices.Clone(rows),
		index: make(map[string]int, len(rows)),
	}
	for i, r := range c.rows {
		if r.Area == "" {
			return nil, fmt.Errorf("coordinates row %d: empty area name", i+1)
		}
		if _, dup := c.index[r.Area]; dup {
			return nil, fmt.Errorf("coordinates: duplicate area %q", r.Area)
		}
		c.index[r.Area] = i
	}
	return c, nil
}

// Lookup returns the coordinates of area.
func (c *Coordinates) Lookup(area string) (AreaCoordinate, bool) {
	i, ok := c.index[area]
	if !ok {
		return AreaCoordinate{}, false
	}
	return c.rows[i], true
}

// Len returns the number of areas.
func (c *Coordinates) Len() int { return len(c.rows) }

// Rows returns a copy of the table rows in load order.
func (c *Coordinates) Rows() []AreaCoordinate { return slices.Clone(c.rows) }

// ObservationRow is one (category, area) row of the wide observation table.
// Counts is aligned with the table's date columns.
type ObservationRow struct {
	Category Category
	Area     string
	Counts   []float64
}

type rowKey struct {
	category Category
	area     string
}

// ObservationTable is the immutable wide-format observation table.
type ObservationTable struct {
	dates []Date
	rows  []ObservationRow
	index map[rowKey]int
}

// NewObservationTable builds the table from date columns and rows. Inputs
// are copied. Every row must have one count per date, a known category and
// a (category, area) key that appears once.
func NewObservationTable(dates []Date, rows []ObservationRow) (*ObservationTable, error) {
	seen := make(map[Date]struct{}, len(dates))
	for _, d := range dates {
		if d.IsZero() {
			return nil, errors.New("observations: zero date column")
		}
		if _, dup := seen[d]; dup {
			return nil, fmt.Errorf("observations: duplicate date column %s", d)
		}
		seen[d] = struct{}{}
	}

	t := &ObservationTable{
		dates: slices.Clone(dates),
		rows:  make([]ObservationRow, 0, len(rows)),
		index: make(map[rowKey]int, len(rows)),
	}
	for i, r := range rows {
		if !r.Category.Known() {
			return nil, fmt.Errorf("observations row %d: unknown category %q", i+1, r.Category)
		}
		if r.Area == "" {
			return nil, fmt.Errorf("observations row %d: empty area name", i+1)
		}
		if len(r.Counts) != len(dates) {
			return nil, fmt.Errorf("observations row %d: %d counts for %d date columns", i+1, len(r.Counts), len(dates))
		}
		key := rowKey{category: r.Category, area: r.Area}
		if _, dup := t.index[key]; dup {
			return nil, fmt.Errorf("observations: duplicate row (%s, %s)", r.Category, r.Area)
		}
		t.index[key] = len(t.rows)
		t.rows = append(t.rows, ObservationRow{
			Category: r.Category,
			Area:     r.Area,
			Counts:   slices.Clone(r.Counts),
		})
	}
	return t, nil
}

// Dates returns a copy of the date columns in source order.
func (t *ObservationTable) Dates() []Date { return slices.Clone(t.dates) }

// Len returns the number of rows.
func (t *ObservationTable) Len() int { return len(t.rows) }

// Areas returns the distinct areas in order of first appearance.
func (t *ObservationTable) Areas() []string {
	seen := make(map[string]struct{})
	areas := []string{}
	for _, r := range t.rows {
		if _, ok := seen[r.Area]; ok {
			continue
		}
		seen[r.Area] = struct{}{}
		areas = append(areas, r.Area)
	}
	return areas
}

// Rows returns deep copies of all rows in source order.
func (t *ObservationTable) Rows() []ObservationRow {
	out := make([]ObservationRow, len(t.rows))
	for i, r := range t.rows {
		out[i] = ObservationRow{Category: r.Category, Area: r.Area, Counts: slices.Clone(r.Counts)}
	}
	return out
}

// series returns the counts of (category, area) without copying.
func (t *ObservationTable) series(category Category, area string) ([]float64, bool) {
	i, ok := t.index[rowKey{category: category, area: area}]
	if !ok {
		return nil, false
	}
	return t.rows[i].Counts, true
}
