// Package dataset opens the configured dataset source and loads it.
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/tokyo-flow-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/adapter/sqlite"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/config"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/domain"
)

// Location says where the two tables live.
type Location struct {
	Source           string
	CoordinatesFile  string
	ObservationsFile string
	Encoding         string
	SQLitePath       string
}

// FromConfig returns the dataset location configured for the service.
func FromConfig(cfg *config.Config) Location {
	return Location{
		Source:           cfg.DataSource,
		CoordinatesFile:  cfg.CoordinatesFile,
		ObservationsFile: cfg.ObservationsFile,
		Encoding:         cfg.DataEncoding,
		SQLitePath:       cfg.SQLitePath,
	}
}

// String describes the location for logs.
func (l Location) String() string {
	if l.Source == config.SourceSQLite {
		return "sqlite:" + l.SQLitePath
	}
	return fmt.Sprintf("csv:%s,%s", l.CoordinatesFile, l.ObservationsFile)
}

// Load reads both tables from loc and builds the dataset.
func Load(ctx context.Context, loc Location, logger *slog.Logger) (*domain.Dataset, error) {
	start := time.Now()

	var src domain.DatasetSource
	switch loc.Source {
	case config.SourceCSV:
		src = csvfile.NewSource(loc.CoordinatesFile, loc.ObservationsFile, loc.Encoding)
	case config.SourceSQLite:
		db, err := sqlite.Open(ctx, loc.SQLitePath)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		src = db
	default:
		return nil, fmt.Errorf("unknown data source %q", loc.Source)
	}

	ds, err := domain.LoadDataset(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", loc, err)
	}
	logger.Info("dataset loaded", "source", loc.String(), "duration", time.Since(start))
	return ds, nil
}
