package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGeoTable_Example(t *testing.T) {
	filtered := Filter(exampleTable(t), CategoryAll, day1, day2)

	got := ToGeoTable(filtered, exampleCoordinates(t))

	want := []GeoObservation{
		{Area: "X", Total: 5, Latitude: 35.69, Longitude: 139.75},
		{Area: "Y", Total: 6, Latitude: 35.69, Longitude: 139.70},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToGeoTable mismatch (-want +got):\n%s", diff)
	}
}

func TestToGeoTable_InnerJoin(t *testing.T) {
	coords, err := NewCoordinates([]AreaCoordinate{
		{Area: "Y", Latitude: 1, Longitude: 2},
		{Area: "Z", Latitude: 3, Longitude: 4},
	})
	require.NoError(t, err)
	filtered := Filter(exampleTable(t), CategoryAll, day1, day2)

	got := ToGeoTable(filtered, coords)

	require.Len(t, got, 1, "X has no coordinates, Z has no observations")
	assert.Equal(t, "Y", got[0].Area)
	assert.Equal(t, 6.0, got[0].Total)
}

func TestToGeoTable_EmptyFilter(t *testing.T) {
	filtered := Filter(exampleTable(t), Category("nobody"), day1, day2)

	got := ToGeoTable(filtered, exampleCoordinates(t))

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestToTidySeries_Example(t *testing.T) {
	got := ToTidySeries(exampleTable(t), CategoryAll, AreaList{"X", "Y"})

	want := TidySeries{
		{Date: day1, Area: "X", Count: 2},
		{Date: day2, Area: "X", Count: 3},
		{Date: day1, Area: "Y", Count: 5},
		{Date: day2, Area: "Y", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToTidySeries mismatch (-want +got):\n%s", diff)
	}
}

func TestToTidySeries_SelectionOrder(t *testing.T) {
	got := ToTidySeries(exampleTable(t), CategoryAll, AreaList{"Y", "X"})

	require.Len(t, got, 4)
	assert.Equal(t, "Y", got[0].Area)
	assert.Equal(t, "Y", got[1].Area)
	assert.Equal(t, "X", got[2].Area)
}

func TestToTidySeries_OneAreaMatchesSingletonList(t *testing.T) {
	tbl := exampleTable(t)

	single := ToTidySeries(tbl, CategoryResident, OneArea("Y"))
	list := ToTidySeries(tbl, CategoryResident, AreaList{"Y"})

	assert.Equal(t, list, single)
	assert.Len(t, single, 2)
}

func TestToTidySeries_Empty(t *testing.T) {
	tbl := exampleTable(t)

	for name, sel := range map[string]AreaSelection{
		"nil":        nil,
		"empty list": AreaList{},
		"nil list":   AreaList(nil),
	} {
		t.Run(name, func(t *testing.T) {
			got := ToTidySeries(tbl, CategoryAll, sel)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestToTidySeries_UnknownAreaSkipped(t *testing.T) {
	got := ToTidySeries(exampleTable(t), CategoryAll, AreaList{"X", "nowhere"})

	require.Len(t, got, 2)
	assert.Equal(t, "X", got[0].Area)
}

func TestToTidySeries_RowCount(t *testing.T) {
	tbl := exampleTable(t)
	areas := AreaList{"X", "Y", "X"}

	got := ToTidySeries(tbl, CategoryAll, areas)

	assert.Len(t, got, len(areas)*len(tbl.Dates()))
}

func TestAreas_Normalizes(t *testing.T) {
	assert.Equal(t, []string{"新宿区"}, Areas(OneArea("新宿区")))
	assert.Equal(t, []string{"A", "B"}, Areas(AreaList{"A", "B"}))
	assert.Equal(t, []string{}, Areas(nil))
}
