// Package domain models ward-level population-flow statistics for Tokyo and
// the two transformations the dashboard runs on them.
//
// # Data Source
//
// Two tables are loaded once at startup and never mutated afterwards:
//
//	Coordinates:   one row per ward, "エリア" (area) → latitude, longitude.
//	Observations:  wide table keyed by ("対象分類" category, "エリア" area),
//	               one column per calendar day, cells are head counts.
//
// Ward names are the join key between the two tables. They are expected to
// come from the same vocabulary; a ward present in only one table is
// silently dropped by the map view (see [ToGeoTable]).
//
// # Categories
//
// The population classification uses the source labels:
//
//	全体   (all)       every observed person
//	住人   (resident)  people whose home is inside the ward
//	来訪者 (visitor)   people visiting from outside the ward
//
// English aliases are accepted at the API boundary by [ParseCategory].
//
// # Transformations
//
//	Filter        wide table → category rows, date columns in [start, end],
//	              plus a per-row total.
//	ToGeoTable    filtered rows ⋈ coordinates on area (inner join) for the map.
//	ToTidySeries  wide table → (date, area, count) rows for the line chart.
//
// None of these return errors. Out-of-contract input (unknown category,
// reversed range, unknown ward) yields an empty or partial result so the
// dashboard keeps rendering while the user adjusts the controls.
package domain
