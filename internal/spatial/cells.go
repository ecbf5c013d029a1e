// Package spatial provides grid cell geometry helpers. Gridded model output
// identifies half-degree cells by their center coordinates ("<lon>_<lat>",
// e.g. "-54.25_-34.75"); cell areas derived from that geometry back the
// mapping weights when a mapping row carries none.
package spatial

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius in kilometers
const EarthRadiusKm = 6371.01

// GridCellSizeDeg is the edge length of a grid cell in degrees
const GridCellSizeDeg = 0.5

// ParseCellID extracts the center coordinates from a grid cell identifier
func ParseCellID(id string) (lon, lat float64, err error) {
	parts := strings.Split(id, "_")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid grid cell id %q", id)
	}

	lon, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude in grid cell id %q: %w", id, err)
	}
	lat, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude in grid cell id %q: %w", id, err)
	}

	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("grid cell id %q out of range", id)
	}
	return lon, lat, nil
}

// CellAreaKm2 returns the surface area of the grid cell centered at the
// given coordinates, in square kilometers.
func CellAreaKm2(lon, lat float64) float64 {
	center := s2.LatLngFromDegrees(lat, lon)
	size := s2.LatLngFromDegrees(GridCellSizeDeg, GridCellSizeDeg)
	rect := s2.RectFromCenterSize(center, size)
	return rect.Area() * EarthRadiusKm * EarthRadiusKm
}

// CellAreaFromID returns the cell area for a parseable grid cell id, or an
// error when the identifier carries no coordinates.
func CellAreaFromID(id string) (float64, error) {
	lon, lat, err := ParseCellID(id)
	if err != nil {
		return 0, err
	}
	return CellAreaKm2(lon, lat), nil
}
