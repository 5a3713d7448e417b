package csvfile

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/couchcryptid/tokyo-flow-dashboard/internal/domain"
)

// WriteCoordinates writes rows in the format ReadCoordinates accepts.
func WriteCoordinates(w io.Writer, rows []domain.AreaCoordinate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"area", "latitude", "longitude"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Area,
			strconv.FormatFloat(r.Latitude, 'f', -1, 64),
			strconv.FormatFloat(r.Longitude, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
