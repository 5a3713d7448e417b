package domain

import "github.com/golang/geo/s2"

// Default map framing, centered on the 23 wards.
const (
	DefaultCenterLat = 35.7
	DefaultCenterLon = 139.74
	DefaultZoom      = 10
)

// LatLon is a WGS-84 coordinate in degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Viewport frames the map around the coordinate table.
type Viewport struct {
	Center    LatLon  `json:"center"`
	SouthWest LatLon  `json:"south_west"`
	NorthEast LatLon  `json:"north_east"`
	Zoom      float64 `json:"zoom"`
}

// NewViewport returns the bounding box of coords and its center. An empty
// table yields the default framing with a degenerate box at the center.
func NewViewport(coords *Coordinates) Viewport {
	rect := s2.EmptyRect()
	for _, c := range coords.rows {
		rect = rect.AddPoint(s2.LatLngFromDegrees(c.Latitude, c.Longitude))
	}

	if rect.IsEmpty() {
		center := LatLon{Lat: DefaultCenterLat, Lon: DefaultCenterLon}
		return Viewport{Center: center, SouthWest: center, NorthEast: center, Zoom: DefaultZoom}
	}

	return Viewport{
		Center:    toLatLon(rect.Center()),
		SouthWest: toLatLon(rect.Lo()),
		NorthEast: toLatLon(rect.Hi()),
		Zoom:      DefaultZoom,
	}
}

func toLatLon(ll s2.LatLng) LatLon {
	return LatLon{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}
}
