// Command geocode builds the area coordinates file by forward-geocoding
// every area named in the observations file through Mapbox.
//
// Usage:
//
//	go run ./cmd/geocode \
//	  -observations data/tokyo.csv \
//	  -out data/adr.csv \
//	  -region 東京都
//
// Mapbox settings (MAPBOX_TOKEN, MAPBOX_TOKEN_FILE, MAPBOX_TIMEOUT,
// MAPBOX_CACHE_SIZE) come from the same environment as the dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/couchcryptid/tokyo-flow-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/adapter/mapbox"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/config"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/domain"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	obsPath := flag.String("observations", cfg.ObservationsFile, "observations CSV to read area names from")
	outPath := flag.String("out", "", "output path for the coordinates CSV (\"-\" for stdout)")
	region := flag.String("region", "東京都", "region appended to every query")
	encoding := flag.String("encoding", cfg.DataEncoding, "observations file encoding (utf-8 or shift_jis)")
	flag.Parse()

	if *outPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if cfg.MapboxToken == "" {
		return fmt.Errorf("geocoding needs a Mapbox token: set MAPBOX_TOKEN or MAPBOX_TOKEN_FILE")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	table, err := csvfile.NewSource("", *obsPath, *encoding).LoadObservations(ctx)
	if err != nil {
		return err
	}
	areas := table.Areas()
	log.Printf("%s: %d areas", *obsPath, len(areas))

	client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
	geocoder := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)

	rows, unresolved := domain.GeocodeAreas(ctx, geocoder, areas, *region, logger)
	if err := writeCoordinates(*outPath, rows); err != nil {
		return fmt.Errorf("writing coordinates: %w", err)
	}
	log.Printf("wrote %d coordinates to %s", len(rows), *outPath)

	if len(unresolved) > 0 {
		return fmt.Errorf("%d areas unresolved: %s", len(unresolved), strings.Join(unresolved, ", "))
	}
	return nil
}

func writeCoordinates(path string, rows []domain.AreaCoordinate) error {
	if path == "-" {
		return csvfile.WriteCoordinates(os.Stdout, rows)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := csvfile.WriteCoordinates(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
