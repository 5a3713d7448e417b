package domain

import (
	"context"
	"fmt"
	"time"
)

// DatasetSource loads the two reference tables.
type DatasetSource interface {
	LoadCoordinates(ctx context.Context) (*Coordinates, error)
	LoadObservations(ctx context.Context) (*ObservationTable, error)
}

// Dataset is the immutable context every view is computed from. It is built
// once at startup and shared read-only between requests.
type Dataset struct {
	observations *ObservationTable
	coordinates  *Coordinates
	viewport     Viewport
	loadedAt     time.Time
}

// NewDataset wraps already-validated tables.
func NewDataset(obs *ObservationTable, coords *Coordinates) *Dataset {
	return &Dataset{
		observations: obs,
		coordinates:  coords,
		viewport:     NewViewport(coords),
		loadedAt:     clock.Now(),
	}
}

// LoadDataset reads both tables from src.
func LoadDataset(ctx context.Context, src DatasetSource) (*Dataset, error) {
	coords, err := src.LoadCoordinates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load coordinates: %w", err)
	}
	obs, err := src.LoadObservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	return NewDataset(obs, coords), nil
}

func (d *Dataset) Observations() *ObservationTable { return d.observations }
func (d *Dataset) Coordinates() *Coordinates       { return d.coordinates }
func (d *Dataset) Viewport() Viewport              { return d.viewport }
func (d *Dataset) LoadedAt() time.Time             { return d.loadedAt }

// Span returns the earliest and latest date columns. ok is false when the
// table has no date columns.
func (d *Dataset) Span() (first, last Date, ok bool) {
	for i, date := range d.observations.dates {
		if i == 0 || date.Before(first) {
			first = date
		}
		if i == 0 || date.After(last) {
			last = date
		}
	}
	return first, last, len(d.observations.dates) > 0
}

// Areas returns the distinct observation areas in first-appearance order.
func (d *Dataset) Areas() []string {
	return d.observations.Areas()
}

// VocabularyReport lists areas that appear in only one of the two tables.
type VocabularyReport struct {
	ObservationsOnly []string `json:"observations_only"`
	CoordinatesOnly  []string `json:"coordinates_only"`
}

// Consistent reports whether both tables use the same area vocabulary.
func (r VocabularyReport) Consistent() bool {
	return len(r.ObservationsOnly) == 0 && len(r.CoordinatesOnly) == 0
}

// Vocabulary compares the area names of the two tables. Mismatched areas
// are dropped by the map join.
func (d *Dataset) Vocabulary() VocabularyReport {
	report := VocabularyReport{ObservationsOnly: []string{}, CoordinatesOnly: []string{}}
	observed := make(map[string]struct{})
	for _, area := range d.Areas() {
		observed[area] = struct{}{}
		if _, ok := d.coordinates.Lookup(area); !ok {
			report.ObservationsOnly = append(report.ObservationsOnly, area)
		}
	}
	for _, c := range d.coordinates.rows {
		if _, ok := observed[c.Area]; !ok {
			report.CoordinatesOnly = append(report.CoordinatesOnly, c.Area)
		}
	}
	return report
}
