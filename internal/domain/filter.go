package domain

// FilteredRow is one area of a filtered table with its retained counts and
// their sum.
type FilteredRow struct {
	Area   string
	Counts []float64
	Total  float64
}

// FilteredObservations is a derived copy of the observation table restricted
// to one category and a date range.
type FilteredObservations struct {
	Category Category
	Dates    []Date
	Rows     []FilteredRow
}

// Filter keeps the rows of category and the date columns within
// [start, end] inclusive, and totals each row across the kept columns.
// Column and row order follow the source table. A range with no columns
// leaves every Total at zero; an unmatched category leaves Rows empty.
func Filter(t *ObservationTable, category Category, start, end Date) FilteredObservations {
	out := FilteredObservations{
		Category: category,
		Dates:    []Date{},
		Rows:     []FilteredRow{},
	}

	var cols []int
	for i, d := range t.dates {
		if d.Within(start, end) {
			cols = append(cols, i)
			out.Dates = append(out.Dates, d)
		}
	}

	for _, r := range t.rows {
		if r.Category != category {
			continue
		}
		row := FilteredRow{Area: r.Area, Counts: make([]float64, len(cols))}
		for j, c := range cols {
			row.Counts[j] = r.Counts[c]
			row.Total += r.Counts[c]
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
