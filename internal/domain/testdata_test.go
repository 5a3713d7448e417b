package domain

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	day1 = NewDate(2020, 2, 1)
	day2 = NewDate(2020, 2, 2)
	day3 = NewDate(2020, 2, 3)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// exampleTable is the two-ward, two-day table used throughout the tests:
// X = {2, 3}, Y = {5, 1} for 全体, plus resident rows that must never leak
// into 全体 results.
func exampleTable(t *testing.T) *ObservationTable {
	t.Helper()
	tbl, err := NewObservationTable([]Date{day1, day2}, []ObservationRow{
		{Category: CategoryAll, Area: "X", Counts: []float64{2, 3}},
		{Category: CategoryAll, Area: "Y", Counts: []float64{5, 1}},
		{Category: CategoryResident, Area: "X", Counts: []float64{1, 1}},
		{Category: CategoryResident, Area: "Y", Counts: []float64{4, 0}},
	})
	require.NoError(t, err)
	return tbl
}

func exampleCoordinates(t *testing.T) *Coordinates {
	t.Helper()
	coords, err := NewCoordinates([]AreaCoordinate{
		{Area: "X", Latitude: 35.69, Longitude: 139.75},
		{Area: "Y", Latitude: 35.69, Longitude: 139.70},
	})
	require.NoError(t, err)
	return coords
}
