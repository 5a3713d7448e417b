package domain

import (
	"context"
	"log/slog"
)

// GeocodeAreas resolves each area to a coordinate row. Areas the geocoder
// fails on or cannot place are returned in unresolved and left out of rows,
// so one bad lookup does not abort the whole table.
func GeocodeAreas(ctx context.Context, geocoder Geocoder, areas []string, region string, logger *slog.Logger) (rows []AreaCoordinate, unresolved []string) {
	for _, area := range areas {
		if ctx.Err() != nil {
			unresolved = append(unresolved, area)
			continue
		}

		result, err := geocoder.ForwardGeocode(ctx, area, region)
		if err != nil {
			logger.Warn("forward geocoding failed",
				"area", area,
				"region", region,
				"error", err,
			)
			unresolved = append(unresolved, area)
			continue
		}
		if result.Lat == 0 && result.Lon == 0 {
			logger.Warn("no geocoding match", "area", area, "region", region)
			unresolved = append(unresolved, area)
			continue
		}

		logger.Debug("area geocoded",
			"area", area,
			"place", result.FormattedAddress,
			"confidence", result.Confidence,
		)
		rows = append(rows, AreaCoordinate{Area: area, Latitude: result.Lat, Longitude: result.Lon})
	}
	return rows, unresolved
}
