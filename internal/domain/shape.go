package domain

// GeoObservation is one map marker: an area's total with its coordinates.
type GeoObservation struct {
	Area      string  `json:"area"`
	Total     float64 `json:"total"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ToGeoTable inner-joins the filtered rows with coords on area. Areas
// missing from either side produce no row. Output follows filtered row order.
func ToGeoTable(f FilteredObservations, coords *Coordinates) []GeoObservation {
	out := make([]GeoObservation, 0, len(f.Rows))
	for _, r := range f.Rows {
		c, ok := coords.Lookup(r.Area)
		if !ok {
			continue
		}
		out = append(out, GeoObservation{
			Area:      r.Area,
			Total:     r.Total,
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
		})
	}
	return out
}

// AreaSelection is the area multi-selector's value: either a single area
// (OneArea) or a sequence of areas (AreaList).
type AreaSelection interface {
	areas() []string
}

// OneArea selects a single area.
type OneArea string

// AreaList selects zero or more areas in display order.
type AreaList []string

func (a OneArea) areas() []string  { return []string{string(a)} }
func (l AreaList) areas() []string { return append([]string(nil), l...) }

// Areas normalizes a selection to a sequence. A nil selection is empty.
func Areas(sel AreaSelection) []string {
	if sel == nil {
		return []string{}
	}
	areas := sel.areas()
	if areas == nil {
		return []string{}
	}
	return areas
}

// SeriesPoint is one row of the long-form series table.
type SeriesPoint struct {
	Date  Date    `json:"date"`
	Area  string  `json:"area"`
	Count float64 `json:"count"`
}

// TidySeries is the long-form (date, area, count) table for the line chart.
type TidySeries []SeriesPoint

// ToTidySeries pivots the rows of category for each selected area into
// (date, area, count) rows over every date column of t, concatenated in
// selection order. Areas without a row for category are skipped.
func ToTidySeries(t *ObservationTable, category Category, sel AreaSelection) TidySeries {
	areas := Areas(sel)
	out := make(TidySeries, 0, len(areas)*len(t.dates))
	for _, area := range areas {
		counts, ok := t.series(category, area)
		if !ok {
			continue
		}
		for i, d := range t.dates {
			out = append(out, SeriesPoint{Date: d, Area: area, Count: counts[i]})
		}
	}
	return out
}
