// Package csvfile loads the reference tables from CSV exports.
package csvfile

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/tokyo-flow-dashboard/internal/domain"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Supported file encodings.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

// Header aliases, lowercased. The Japanese names match the source exports.
var (
	areaHeaders      = []string{"area", "エリア"}
	categoryHeaders  = []string{"category", "対象分類"}
	latitudeHeaders  = []string{"latitude", "lat", "緯度"}
	longitudeHeaders = []string{"longitude", "lon", "lng", "経度"}
)

// Source implements domain.DatasetSource over two CSV files.
type Source struct {
	coordinatesPath  string
	observationsPath string
	encoding         string
}

// NewSource creates a CSV source. encoding is EncodingUTF8 or EncodingShiftJIS.
func NewSource(coordinatesPath, observationsPath, encoding string) *Source {
	return &Source{
		coordinatesPath:  coordinatesPath,
		observationsPath: observationsPath,
		encoding:         encoding,
	}
}

func (s *Source) LoadCoordinates(_ context.Context) (*domain.Coordinates, error) {
	var coords *domain.Coordinates
	err := s.withFile(s.coordinatesPath, func(r io.Reader) error {
		var err error
		coords, err = ReadCoordinates(r)
		return err
	})
	return coords, err
}

func (s *Source) LoadObservations(_ context.Context) (*domain.ObservationTable, error) {
	var table *domain.ObservationTable
	err := s.withFile(s.observationsPath, func(r io.Reader) error {
		var err error
		table, err = ReadObservations(r)
		return err
	})
	return table, err
}

func (s *Source) withFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r, err := Decode(f, s.encoding)
	if err != nil {
		return err
	}
	if err := fn(r); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Decode wraps r so it yields UTF-8 for the given encoding.
func Decode(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", EncodingUTF8:
		return r, nil
	case EncodingShiftJIS:
		return transform.NewReader(r, japanese.ShiftJIS.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// ReadCoordinates parses an area,latitude,longitude table.
func ReadCoordinates(r io.Reader) (*domain.Coordinates, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	header := normalizeHeader(records[0])
	areaCol, err := findColumn(header, areaHeaders)
	if err != nil {
		return nil, err
	}
	latCol, err := findColumn(header, latitudeHeaders)
	if err != nil {
		return nil, err
	}
	lonCol, err := findColumn(header, longitudeHeaders)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.AreaCoordinate, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		lat, err := parseFloat(rec[latCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: latitude: %w", line, err)
		}
		lon, err := parseFloat(rec[lonCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: longitude: %w", line, err)
		}
		rows = append(rows, domain.AreaCoordinate{
			Area:      strings.TrimSpace(rec[areaCol]),
			Latitude:  lat,
			Longitude: lon,
		})
	}
	return domain.NewCoordinates(rows)
}

// ReadObservations parses a wide table: category and area columns followed
// by one column per date. Empty cells count as zero.
func ReadObservations(r io.Reader) (*domain.ObservationTable, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	header := normalizeHeader(records[0])
	catCol, err := findColumn(header, categoryHeaders)
	if err != nil {
		return nil, err
	}
	areaCol, err := findColumn(header, areaHeaders)
	if err != nil {
		return nil, err
	}

	var (
		dates    []domain.Date
		dateCols []int
	)
	for i, name := range header {
		if i == catCol || i == areaCol {
			continue
		}
		d, err := domain.ParseDate(name)
		if err != nil {
			return nil, fmt.Errorf("header column %d: %w", i+1, err)
		}
		dates = append(dates, d)
		dateCols = append(dateCols, i)
	}

	rows := make([]domain.ObservationRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		row := domain.ObservationRow{
			Category: domain.ParseCategory(rec[catCol]),
			Area:     strings.TrimSpace(rec[areaCol]),
			Counts:   make([]float64, len(dateCols)),
		}
		for j, col := range dateCols {
			v, err := parseCount(rec[col])
			if err != nil {
				return nil, fmt.Errorf("line %d, %s: %w", line, dates[j], err)
			}
			row.Counts[j] = v
		}
		rows = append(rows, row)
	}
	return domain.NewObservationTable(dates, rows)
}

func readAll(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && string(b) == "\xef\xbb\xbf" {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("read csv: missing header row")
	}
	return records, nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return out
}

func findColumn(header, names []string) (int, error) {
	for i, h := range header {
		for _, name := range names {
			if h == name {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("missing %q column", names[0])
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// parseCount accepts blank cells and thousands separators.
func parseCount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
