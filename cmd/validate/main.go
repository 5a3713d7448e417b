// Command validate loads the coordinates and observations tables and checks
// that they are consistent with each other: the same area vocabulary, sane
// date columns, and plausible counts and coordinates.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -coordinates data/adr.csv \
//	  -observations data/tokyo.csv
//
//	go run ./cmd/validate -source sqlite -sqlite data/tokyo.db
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/tokyo-flow-dashboard/internal/config"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/dataset"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	loc := dataset.Location{}
	flag.StringVar(&loc.Source, "source", config.SourceCSV, "dataset source (csv or sqlite)")
	flag.StringVar(&loc.CoordinatesFile, "coordinates", "data/adr.csv", "coordinates CSV")
	flag.StringVar(&loc.ObservationsFile, "observations", "data/tokyo.csv", "observations CSV")
	flag.StringVar(&loc.Encoding, "encoding", "utf-8", "CSV encoding (utf-8 or shift_jis)")
	flag.StringVar(&loc.SQLitePath, "sqlite", "data/tokyo.db", "SQLite database")
	flag.Parse()

	os.Exit(run(os.Stdout, loc))
}

func run(out io.Writer, loc dataset.Location) int {
	fmt.Fprintln(out, "=== Dataset Validation ===")
	fmt.Fprintln(out, "Source:", loc)
	fmt.Fprintln(out)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ds, err := dataset.Load(context.Background(), loc, logger)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateVocabulary(ds),
		validateDates(ds),
		validateCounts(ds),
		validateCoordinates(ds),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-30s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	first, last, _ := ds.Span()
	fmt.Fprintf(out, "Rows: %d observations, %d coordinates, %d areas\n",
		ds.Observations().Len(), ds.Coordinates().Len(), len(ds.Areas()))
	fmt.Fprintf(out, "Dates: %d columns, %s to %s\n", len(ds.Observations().Dates()), first, last)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// validateVocabulary reports areas the map join would drop.
func validateVocabulary(ds *domain.Dataset) *phase {
	p := &phase{name: "Area vocabulary"}
	vocab := ds.Vocabulary()
	for _, a := range vocab.ObservationsOnly {
		p.errorf("%s: observed but has no coordinates", a)
	}
	for _, a := range vocab.CoordinatesOnly {
		p.errorf("%s: has coordinates but no observations", a)
	}
	return p
}

func validateDates(ds *domain.Dataset) *phase {
	p := &phase{name: "Date columns"}
	dates := ds.Observations().Dates()
	if len(dates) == 0 {
		p.errorf("no date columns")
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i-1].Before(dates[i]) {
			p.errorf("column %d (%s) does not follow %s", i+1, dates[i], dates[i-1])
		}
	}
	return p
}

func validateCounts(ds *domain.Dataset) *phase {
	p := &phase{name: "Counts"}
	dates := ds.Observations().Dates()
	for _, r := range ds.Observations().Rows() {
		for j, c := range r.Counts {
			if c < 0 {
				p.errorf("%s/%s on %s: negative count %g", r.Category, r.Area, dates[j], c)
			}
		}
	}
	return p
}

func validateCoordinates(ds *domain.Dataset) *phase {
	p := &phase{name: "Coordinates"}
	for _, c := range ds.Coordinates().Rows() {
		if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
			p.errorf("%s: (%g, %g) is not a valid coordinate", c.Area, c.Latitude, c.Longitude)
		}
	}
	return p
}
