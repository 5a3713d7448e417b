// Package sqlite loads the reference tables from a SQLite database.
//
// Expected schema:
//
//	area_coordinates(area TEXT PRIMARY KEY, latitude REAL, longitude REAL)
//	observations(category TEXT, area TEXT, date TEXT, count REAL)
//
// Observations are stored long-form and pivoted to the wide table on load.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"

	"github.com/couchcryptid/tokyo-flow-dashboard/internal/domain"
	_ "modernc.org/sqlite"
)

// Schema creates the tables Source reads from.
const Schema = `
CREATE TABLE IF NOT EXISTS area_coordinates (
	area      TEXT PRIMARY KEY,
	latitude  REAL NOT NULL,
	longitude REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS observations (
	category TEXT NOT NULL,
	area     TEXT NOT NULL,
	date     TEXT NOT NULL,
	count    REAL,
	PRIMARY KEY (category, area, date)
);`

// Source implements domain.DatasetSource over a SQLite database.
type Source struct {
	db *sql.DB
}

// Open opens the existing database at path and verifies the connection.
func Open(ctx context.Context, path string) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	return &Source{db: db}, nil
}

// NewSource wraps an existing handle.
func NewSource(db *sql.DB) *Source {
	return &Source{db: db}
}

func (s *Source) Close() error {
	return s.db.Close()
}

func (s *Source) LoadCoordinates(ctx context.Context) (*domain.Coordinates, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT area, latitude, longitude FROM area_coordinates ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query area_coordinates: %w", err)
	}
	defer rows.Close()

	var out []domain.AreaCoordinate
	for rows.Next() {
		var c domain.AreaCoordinate
		if err := rows.Scan(&c.Area, &c.Latitude, &c.Longitude); err != nil {
			return nil, fmt.Errorf("scan area_coordinates: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate area_coordinates: %w", err)
	}
	return domain.NewCoordinates(out)
}

// LoadObservations pivots the long-form rows. Date columns are ascending;
// rows keep the order in which each (category, area) first appears.
// Missing or NULL cells count as zero.
func (s *Source) LoadObservations(ctx context.Context) (*domain.ObservationTable, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, area, date, count FROM observations ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	type key struct {
		category domain.Category
		area     string
	}
	var (
		order  []key
		cells  = make(map[key]map[domain.Date]float64)
		dateOK = make(map[domain.Date]struct{})
	)
	for rows.Next() {
		var (
			category, area, date string
			count                sql.NullFloat64
		)
		if err := rows.Scan(&category, &area, &date, &count); err != nil {
			return nil, fmt.Errorf("scan observations: %w", err)
		}
		d, err := domain.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("observations (%s, %s): %w", category, area, err)
		}
		k := key{category: domain.ParseCategory(category), area: area}
		if _, ok := cells[k]; !ok {
			cells[k] = make(map[domain.Date]float64)
			order = append(order, k)
		}
		cells[k][d] += count.Float64
		dateOK[d] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}

	dates := make([]domain.Date, 0, len(dateOK))
	for d := range dateOK {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	table := make([]domain.ObservationRow, 0, len(order))
	for _, k := range order {
		row := domain.ObservationRow{Category: k.category, Area: k.area, Counts: make([]float64, len(dates))}
		for i, d := range dates {
			row.Counts[i] = cells[k][d]
		}
		table = append(table, row)
	}
	return domain.NewObservationTable(dates, table)
}
